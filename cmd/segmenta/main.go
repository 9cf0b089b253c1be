package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/segmenta"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "segmenta",
	Short: "Audience segmentation toolkit - catalog search and record partitioning",
	Long: `segmenta ranks audience attribute catalogs against free-text descriptions
and partitions record populations into size-bounded segments.

Catalog sources (local files, S3, MinIO, DynamoDB) are declared in a YAML
configuration file; see the check, search and partition subcommands.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "segmenta.yaml",
		"Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(partitionCmd)
}

func newLogger() *segmenta.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return segmenta.NewTextLogger(level)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
