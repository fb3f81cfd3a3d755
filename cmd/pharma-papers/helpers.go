// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pharma-papers/internal/export"
	"github.com/pdiddy/pharma-papers/internal/observability"
	"github.com/pdiddy/pharma-papers/internal/paper"
	"github.com/pdiddy/pharma-papers/internal/store"
	"github.com/pdiddy/pharma-papers/pkg/types"
)

// setup resolves configuration and a logger for a subcommand.
func setup(cmd *cobra.Command) (types.AppConfig, zerolog.Logger, error) {
	keywordFile, _ := cmd.Flags().GetString("keywords")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := appConfig(viper.GetViper(), keywordFile, debug)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, observability.NewLogger(cfg.Log), nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// addOutputFlags registers --file and --format on cmd.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "write results to this file instead of stdout")
	cmd.Flags().String("format", "", "output format: csv, json, yaml, or table (default csv)")
}

// writeResults flattens results and writes them per --file and --format.
func writeResults(cmd *cobra.Command, results []types.PaperResult) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	rows := export.Flatten(results)

	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		if err := export.Write(cmd.OutOrStdout(), format, rows); err != nil {
			return fmt.Errorf("writing %s output: %w", format, err)
		}
		return nil
	}

	if err := writeFile(path, format, rows); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Results saved to %s\n", path)
	return nil
}

// writeFile writes rows to path and reports the close error with the rest.
func writeFile(path string, format export.Format, rows []types.ExportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.Write(f, format, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s output: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// printSummary reports batch outcomes on stderr so stdout stays clean.
func printSummary(cmd *cobra.Command, sum paper.Summary) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Processed %d record(s): %d kept, %d without authors, %d without commercial authors\n",
		sum.Records, sum.Kept, sum.NoAuthors, sum.NoCommercial)
}

// openStore opens the configured SQLite store.
func openStore(cfg types.AppConfig) (*store.Store, error) {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}
