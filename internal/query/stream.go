package query

import (
	"io"

	"github.com/nishad/silo/internal/action"
	"github.com/nishad/silo/internal/errors"
)

const opWrite errors.Op = "query.WriteResult"

// WriteResult serialises result as NDJSON to w, per spec.md §6's "Query
// response": one NDJSON object per result entry, paced through a
// BatchReslicer to honour the streaming backpressure contract of §5. When
// streaming is false, a trailing `{"queryResult":[…]}` envelope carrying
// every entry follows the NDJSON stream, for legacy non-streaming callers.
func WriteResult(w io.Writer, result *action.QueryResult, reslicer *BatchReslicer, streaming bool) error {
	for batch := range reslicer.Batches(result.Entries) {
		for _, entry := range batch {
			line, err := jsonAPI.Marshal(entry)
			if err != nil {
				return errors.E(opWrite, err, "marshaling entry")
			}
			if _, err := w.Write(line); err != nil {
				return errors.E(opWrite, err, "writing entry")
			}
			if _, err := w.Write([]byte("\n")); err != nil {
				return errors.E(opWrite, err, "writing newline")
			}
		}
	}

	if streaming {
		return nil
	}

	envelope := struct {
		QueryResult []action.Entry `json:"queryResult"`
	}{QueryResult: result.Entries}
	line, err := jsonAPI.Marshal(envelope)
	if err != nil {
		return errors.E(opWrite, err, "marshaling trailing envelope")
	}
	if _, err := w.Write(line); err != nil {
		return errors.E(opWrite, err, "writing trailing envelope")
	}
	_, err = w.Write([]byte("\n"))
	return err
}
