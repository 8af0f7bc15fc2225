package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"medrag/internal/dataset"
	"medrag/internal/lexicon"
	"medrag/internal/service"
	"medrag/internal/tui"
	"medrag/internal/vectorstore/memory"
)

var browseCmd = &cobra.Command{
	Use:   "browse <dataset.json|dataset.csv>",
	Short: "Search a written dataset interactively",
	Long: `Load a dataset and open a terminal browser over it.

Queries are answered by the configured embedder over an in-memory index, or
by word overlap when no embedder is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		records, err := dataset.ReadFile(args[0])
		if err != nil {
			return err
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		lex, err := lexicon.Load(cfg.Lexicon)
		if err != nil {
			return err
		}
		emb, err := buildEmbedder(cfg.Embedder, lex, log)
		if err != nil {
			return err
		}
		// Browsing indexes in memory and never writes to the configured sinks.
		c := service.Components{Embedder: emb}
		if emb.Available() {
			c.Store = memory.NewStorage()
		}
		svc := service.NewDatasetService(c, service.Options{}, log)
		if err := svc.Index(ctx, records); err != nil {
			return err
		}

		summary := fmt.Sprintf("%d records from %s", len(records), args[0])
		_, err = tea.NewProgram(tui.New(ctx, svc, summary), tea.WithContext(ctx)).Run()
		return err
	},
}
