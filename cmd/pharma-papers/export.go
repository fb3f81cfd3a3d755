// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pharma-papers/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored papers",
	Long: `Export writes papers saved by fetch --store or process --store, optionally
filtered to a company name substring.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("company", "", "only papers with a company affiliation containing this text")
	exportCmd.Flags().Int("limit", 0, "maximum papers to export (0 = all)")
	addOutputFlags(exportCmd)

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}
	company, _ := cmd.Flags().GetString("company")
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := st.List(context.Background(), store.ListOptions{Company: company, Limit: limit})
	if err != nil {
		return err
	}
	return writeResults(cmd, results)
}
