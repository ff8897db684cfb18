package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the silo version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("silo %s (commit: %s, built: %s)\n", version, commit, date)
		return nil
	},
}
