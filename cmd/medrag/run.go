package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"medrag/internal/config"
	"medrag/internal/dataset"
)

var (
	runTOC     string
	runText    string
	runProfile string
	runOut     string
	runMode    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the dataset from a table of contents and full text",
	Long: `Parse the table of contents, process every chapter and write the dataset.

Examples:
  medrag run --toc contents.txt --text fulltext.txt
  medrag run --profile compact --out build/
  medrag run --text chapters.txt --mode markers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := applyRunFlags(cfg); err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		svc, err := buildService(ctx, cfg, log)
		if err != nil {
			return err
		}
		res, err := svc.Build(ctx)
		if err != nil {
			return err
		}

		cols := dataset.Columns{
			Category:    cfg.Output.Category,
			MicroChunks: cfg.Output.MicroChunks,
			Tables:      cfg.Output.Tables,
			Embeddings:  cfg.Output.Embeddings,
			Identifiers: cfg.Output.Identifiers,
		}
		paths, err := dataset.WriteFiles(cfg.Output.Dir, cfg.Output.Basename, cfg.Output.Formats, res.Records, cols)
		if err != nil {
			return err
		}
		log.Info("dataset written", zap.Strings("paths", paths), zap.Int("records", len(res.Records)))
		svc.Publish(ctx, res)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "chapters: %d (skipped %d, malformed toc lines %d)\n", res.Chapters, res.Skipped, res.Malformed)
		fmt.Fprintf(out, "records:  %d (dropped chunks %d)\n", len(res.Records), res.DroppedChunks)
		if cfg.Output.Embeddings {
			fmt.Fprintf(out, "missing embeddings: %d\n", res.EmbeddingsMissing)
		}
		for _, p := range paths {
			fmt.Fprintf(out, "wrote %s\n", p)
		}
		for _, err := range []error{res.StoreErr, res.SinkErr} {
			if err != nil {
				fmt.Fprintf(out, "warning: %v\n", err)
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runTOC, "toc", "", "table of contents file (overrides book.toc_path)")
	runCmd.Flags().StringVar(&runText, "text", "", "full text file (overrides book.text_path)")
	runCmd.Flags().StringVar(&runProfile, "profile", "", "chunking profile: compact or fine")
	runCmd.Flags().StringVar(&runOut, "out", "", "output directory (overrides output.dir)")
	runCmd.Flags().StringVar(&runMode, "mode", "", "text source mode: pages or markers")
}

func applyRunFlags(cfg *config.AppConfig) error {
	if runTOC != "" {
		cfg.Book.TOCPath = runTOC
	}
	if runText != "" {
		cfg.Book.TextPath = runText
	}
	if runMode != "" {
		cfg.Book.SourceMode = runMode
	}
	if runOut != "" {
		cfg.Output.Dir = runOut
	}
	if runProfile != "" {
		preset, ok := config.Profiles()[runProfile]
		if !ok {
			return fmt.Errorf("unknown profile %q", runProfile)
		}
		cfg.Profile = preset
	}
	return nil
}
