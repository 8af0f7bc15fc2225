package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"medrag/internal/dataset"
	"medrag/internal/report"
)

var verifyMaxChunks int

var verifyCmd = &cobra.Command{
	Use:   "verify <dataset.csv|dataset.json>",
	Short: "Check a written dataset and print a quality report",
	Long: `Check chunk counts per chapter, required fields, sibling topic
uniqueness and summary bounds. Exits non-zero when a check fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		records, err := dataset.ReadFile(args[0])
		if err != nil {
			return err
		}
		maxChunks := cfg.Profile.ChunkCount
		if verifyMaxChunks > 0 {
			maxChunks = verifyMaxChunks
		}
		r := report.Verify(records, report.Options{MaxChunks: maxChunks, SummaryBudget: cfg.Summarizer.CharBudget})
		if err := r.Write(cmd.OutOrStdout()); err != nil {
			return err
		}
		if !r.OK() {
			return errors.New("dataset verification failed")
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().IntVar(&verifyMaxChunks, "max-chunks", 0, "per-chapter chunk limit (default: profile chunk_count)")
}
