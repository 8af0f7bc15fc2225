package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"medrag/internal/source"
)

var convertCmd = &cobra.Command{
	Use:   "convert <book.pdf> <fulltext.txt>",
	Short: "Extract page-marked text from a PDF",
	Long: `Write the text of every PDF page to a file, each page preceded by a
"--- PAGE n ---" marker, ready for "medrag run".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		w := bufio.NewWriter(out)
		pages, err := source.ConvertPDF(args[0], w, log)
		if err == nil {
			err = w.Flush()
		}
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		log.Info("pdf converted", zap.String("pdf", args[0]), zap.Int("pages", pages))
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d pages to %s\n", pages, args[1])
		return nil
	},
}
