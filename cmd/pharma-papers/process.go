// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pharma-papers/internal/paper"
	"github.com/pdiddy/pharma-papers/internal/pubmed"
	"github.com/pdiddy/pharma-papers/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Process a saved batch of records",
	Long: `Process reads records from a local file and applies the same filter as
fetch. Files ending in .xml are read as a PubMed efetch document; anything
else must be a JSON array of records. Use "-" to read JSON from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().Bool("store", false, "save results to the database")
	addOutputFlags(processCmd)

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	records, err := readRecords(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	proc := paper.NewProcessor(cfg.Keywords, paper.WithLogger(logger))
	results, sum := proc.ProcessBatch(records)
	printSummary(cmd, sum)

	if save, _ := cmd.Flags().GetBool("store"); save {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Save(context.Background(), "", results); err != nil {
			return err
		}
	}

	return writeResults(cmd, results)
}

// readRecords loads records from path, or JSON from stdin when path is "-".
func readRecords(stdin io.Reader, path string) ([]types.Record, error) {
	if path == "-" {
		return paper.DecodeBatch(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return pubmed.ParseArticleSet(f)
	}
	return paper.DecodeBatch(f)
}
