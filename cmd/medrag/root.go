package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"medrag/internal/config"
	"medrag/internal/logging"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "medrag",
	Short: "Turn a textbook's full text into a chunked, summarized dataset",
	Long: `medrag reads a table of contents and the full text of a medical textbook,
splits every chapter into a few coherent chunks, names and summarizes each
chunk, and writes the result as CSV and JSON.

Optional stages embed the chunks, index them in a vector store and mirror
them into MySQL. The browse command searches a written dataset.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./medrag.yaml or ~/.config/medrag/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)",
	)

	rootCmd.AddCommand(runCmd, browseCmd, convertCmd, verifyCmd, versionCmd)
}

// loadConfig reads the config selected by --config and applies --log-level.
func loadConfig() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if cfgFile == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgFile)
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	return logging.New(cfg.LogLevel)
}
