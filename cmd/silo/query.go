package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nishad/silo/internal/config"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/query"
	"github.com/nishad/silo/internal/table"
	"github.com/spf13/cobra"
)

var (
	queryDatabase       string
	queryFile           string
	queryConfigPath     string
	queryLegacyEnvelope bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a filter/action query against a SILO database directory",
	Long: `query loads a database directory written by a previous build, compiles
the filter expression of a query JSON document per partition, evaluates it
in parallel, runs the requested action, and streams the result as NDJSON
to stdout.

The query document is read from --query, or from stdin if --query is not
given.`,
	RunE:          runQuery,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	queryCmd.Flags().StringVarP(&queryDatabase, "database", "d", "", "Database directory to query (defaults to the configured database path)")
	queryCmd.Flags().StringVarP(&queryFile, "query", "f", "", "Path to a query JSON file (defaults to stdin)")
	queryCmd.Flags().StringVar(&queryConfigPath, "config", "", "Path to a silo.yaml config file (defaults to the standard search path)")
	queryCmd.Flags().BoolVar(&queryLegacyEnvelope, "legacy-envelope", false, "Append a trailing {\"queryResult\":[...]} envelope after the NDJSON stream")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfgPath := queryConfigPath
	if cfgPath == "" {
		cfgPath = config.GetConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dbPath := queryDatabase
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}

	var data []byte
	if queryFile != "" {
		data, err = os.ReadFile(queryFile)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("reading query: %w", err)
	}

	req, err := query.ParseRequest(data)
	if err != nil {
		return reportQueryError(err)
	}

	t, err := table.LoadTable(dbPath)
	if err != nil {
		return fmt.Errorf("loading database %q: %w", dbPath, err)
	}

	driver := &query.Driver{WorkerPoolSize: cfg.Query.WorkerPoolSize}
	result, err := driver.Run(t, req)
	if err != nil {
		return reportQueryError(err)
	}

	reslicer := query.NewBatchReslicer(cfg.Query.StreamBatchSize, cfg.Query.StreamBatchMinMs)
	return query.WriteResult(os.Stdout, result, reslicer, !queryLegacyEnvelope)
}

// reportQueryError prints spec.md §6's `{"error": <kind>, "message": <string>}`
// error envelope to stderr instead of cobra's default usage dump, and maps
// BadRequest to a non-zero exit the same way the HTTP transport would map
// it to status 400 (the HTTP transport itself is out of scope; see
// SPEC_FULL.md §1).
func reportQueryError(err error) error {
	kind := errors.GetKind(err)
	fmt.Fprintf(os.Stderr, "{\"error\":%q,\"message\":%q}\n", kind.String(), err.Error())
	return errSilent{err}
}

// errSilent suppresses cobra's own "Error: ..." line (already printed by
// reportQueryError in the query-response envelope shape) while still
// causing main to exit non-zero.
type errSilent struct{ err error }

func (e errSilent) Error() string { return e.err.Error() }
