package main

import (
	"fmt"
	"os"

	"github.com/nishad/silo/internal/paths"
	"github.com/spf13/cobra"
)

var (
	version = "0.0.1-alpha"
	commit  = "dev"
	date    = "unknown"
)

var (
	verbose bool
	quiet   bool
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "silo",
	Short: "Columnar query engine for aligned biological sequence data",
	Long: `silo is a columnar analytics engine for large collections of aligned
nucleotide and amino-acid sequences paired with tabular metadata.

It compiles filter expressions over sequence positions, mutations,
insertions, and metadata columns into roaring-bitmap operator trees,
evaluates them per partition in parallel, and runs aggregation, detail
projection, mutation-proportion, and sequence-reconstruction actions
against the result.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Example: `  # Run a query against a loaded database directory
  silo query --database ./data/my-db --query query.json

  # Read a query from stdin, stream NDJSON to stdout
  cat query.json | silo query --database ./data/my-db

  # Print version information
  silo version`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create directories: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
