// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pharma-papers/internal/paper"
	"github.com/pdiddy/pharma-papers/internal/pubmed"
	"github.com/pdiddy/pharma-papers/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <query>",
	Short: "Search PubMed and report papers with company-affiliated authors",
	Long: `Fetch runs a PubMed query (full PubMed syntax), downloads the matching
records, and keeps papers where at least one author has a commercial
affiliation. Results go to stdout as CSV unless --file or --format say
otherwise. Use --store to also save them to the local database.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int("max-results", 0, "maximum number of PubMed ids to fetch (default 100)")
	fetchCmd.Flags().Int("workers", 4, "batches processed concurrently")
	fetchCmd.Flags().Bool("store", false, "save results to the database")
	fetchCmd.Flags().String("save-records", "", "also write the fetched records as JSON, for later use with process")
	addOutputFlags(fetchCmd)

	_ = viper.BindPFlag("pubmed.max_results", fetchCmd.Flags().Lookup("max-results"))

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")
	workers, _ := cmd.Flags().GetInt("workers")
	save, _ := cmd.Flags().GetBool("store")

	ctx, cancel := signalContext()
	defer cancel()

	client := pubmed.New(cfg.PubMed, pubmed.WithLogger(logger))
	found, err := client.Search(ctx, query, cfg.PubMed.MaxResults)
	if err != nil {
		return fmt.Errorf("searching PubMed: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Found %d paper(s), fetching %d\n", found.Count, len(found.IDs))

	batches, err := client.FetchBatches(ctx, found.IDs)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save-records"); path != "" {
		if err := saveRecords(path, batches); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Records saved to %s\n", path)
	}

	proc := paper.NewProcessor(cfg.Keywords, paper.WithLogger(logger))
	results, sum, err := proc.ProcessBatches(ctx, batches, workers)
	if err != nil {
		return err
	}
	printSummary(cmd, sum)

	if save {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		runID, err := st.BeginRun(ctx, query)
		if err != nil {
			return err
		}
		if err := st.Save(ctx, runID, results); err != nil {
			return err
		}
		if err := st.FinishRun(ctx, runID, sum.Records, sum.Kept); err != nil {
			return err
		}
		logger.Info().Str("run_id", runID).Int("kept", sum.Kept).Msg("results stored")
	}

	return writeResults(cmd, results)
}

func saveRecords(path string, batches [][]types.Record) error {
	var records []types.Record
	for _, b := range batches {
		records = append(records, b...)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := paper.EncodeBatch(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
