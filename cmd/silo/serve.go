package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var servePort int

// serveCmd is declared per SPEC_FULL.md §1's CLI section but its body is a
// thin stub: the HTTP/API transport that would turn each request into a
// call into internal/query.Driver is explicitly out of scope (spec.md §1),
// so no router dependency (gorilla/mux or otherwise — see DESIGN.md) is
// wired in for it.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve queries over HTTP (not implemented — see DESIGN.md)",
	Long: `serve is a placeholder for the HTTP/API transport that would dispatch
incoming requests into internal/query.Driver.Run, one per partition-parallel
query. Implementing that transport is out of scope for this engine (see
spec.md §1's Non-goals); use "silo query" for single-shot queries instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("serve: HTTP transport is out of scope for this build; use \"silo query\" (port %d requested)", servePort)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
}
