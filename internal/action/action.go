// Package action implements Component H (spec.md §4.D): the query actions
// that consume a compiled filter's per-partition row-id bitmaps and
// produce a QueryResult stream.
package action

import (
	"fmt"

	"github.com/nishad/silo/internal/bitmapx"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/table"
)

const opExecute errors.Op = "action.Execute"

// Kind is the closed set of action kinds of spec.md §2/§4.D.
type Kind string

const (
	KindAggregated           Kind = "Aggregated"
	KindDetails              Kind = "Details"
	KindNucMutations         Kind = "NucMutations"
	KindAAMutations          Kind = "AAMutations"
	KindInsertionAggregation Kind = "InsertionAggregation"
	KindFasta                Kind = "Fasta"
	KindFastaAligned         Kind = "FastaAligned"
)

// OrderBy is one `{field, ascending}` entry of an action's orderByFields
// list (spec.md §4.D); JSON parsing (string → ascending, or
// {field,order}) lives in internal/query, which hands Action already
// decoded OrderBy values.
type OrderBy struct {
	Field     string
	Ascending bool
}

// Action is Component H's tagged action request: one struct carrying
// every kind's parameters, dispatched by Execute's switch — the same
// flat-struct tagged-sum-type shape used by internal/filter.Node.
type Action struct {
	Type Kind

	// Aggregated.
	GroupBy []string

	// Details.
	Fields []string // empty = every scalar/string column

	// NucMutations, Fasta, FastaAligned (single optional sequence name).
	SequenceName string
	// AAMutations, InsertionAggregation, Fasta, FastaAligned (explicit list).
	SequenceNames []string

	// NucMutations, AAMutations.
	MinProportion float64

	// Fasta, FastaAligned: extra scalar columns to emit alongside the
	// reconstructed sequence(s).
	AdditionalFields []string

	OrderBy       []OrderBy
	Limit         *int
	Offset        *int
	RandomizeSeed *uint64
}

// Entry is one result row: `{fieldName → JsonValue}`, per spec.md §4.D.
type Entry map[string]any

// QueryResult is the ordered, materialized output of an action, per
// spec.md §4.D/§4.F. Streaming to the caller (NDJSON framing, backpressure
// batching) is internal/query's job; Execute always returns the full,
// already-ordered/limited entry list, since every action here either
// aggregates (inherently needs every row before it can order) or
// reconstructs a bounded result the driver then hands to its own
// BatchReslicer for emission pacing.
type QueryResult struct {
	Entries []Entry
}

// hasOrder reports whether a's output has any defined ordering: an
// explicit orderBy always does; absent that, every action except
// Aggregated still emits in a defined partition/row-id order (spec.md §5),
// so only a plain Aggregated with no orderBy — grouped or not — has none,
// per spec.md §4.D's limit/offset validation contract and its scenario 6.
func (a *Action) hasOrder() bool {
	if len(a.OrderBy) > 0 {
		return true
	}
	if a.Type == KindAggregated {
		return false
	}
	return true
}

// Validate checks limit/offset usage against spec.md §4.D: limit >= 1 when
// present, offset >= 0, and neither is allowed on an unordered result set.
func (a *Action) Validate() error {
	if a.Limit != nil && *a.Limit < 1 {
		return errors.BadRequest(opExecute, "limit must be >= 1")
	}
	if a.Offset != nil && *a.Offset < 0 {
		return errors.BadRequest(opExecute, "offset must be >= 0")
	}
	if (a.Limit != nil || a.Offset != nil) && !a.hasOrder() {
		return errors.BadRequest(opExecute, "Offset and limit can only be applied if the output of the operation has some ordering, e.g. through an orderByField")
	}
	if a.Type == KindNucMutations || a.Type == KindAAMutations {
		if a.MinProportion <= 0 || a.MinProportion > 1 {
			return errors.BadRequest(opExecute, "minProportion must be in (0, 1]")
		}
	}
	return nil
}

// Execute runs the action against t using bitmaps, one per t.Partitions
// entry in the same order, per spec.md §4.F step 4.
func (a *Action) Execute(t *table.Table, bitmaps []*bitmapx.Bitmap) (*QueryResult, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if len(bitmaps) != len(t.Partitions) {
		return nil, errors.E(opExecute, errors.KindQueryCompilation, fmt.Sprintf("expected %d partition bitmaps, got %d", len(t.Partitions), len(bitmaps)))
	}

	var entries []Entry
	var err error
	switch a.Type {
	case KindAggregated:
		entries, err = a.executeAggregated(t, bitmaps)
	case KindDetails:
		entries, err = a.executeDetails(t, bitmaps)
	case KindNucMutations:
		entries, err = a.executeMutations(t, bitmaps, false)
	case KindAAMutations:
		entries, err = a.executeMutations(t, bitmaps, true)
	case KindInsertionAggregation:
		entries, err = a.executeInsertionAggregation(t, bitmaps)
	case KindFasta:
		entries, err = a.executeFasta(t, bitmaps, false)
	case KindFastaAligned:
		entries, err = a.executeFasta(t, bitmaps, true)
	default:
		return nil, errors.BadRequest(opExecute, fmt.Sprintf("unknown action type %q", a.Type))
	}
	if err != nil {
		return nil, err
	}

	entries = applyLimitOffset(entries, a.Offset, a.Limit)
	return &QueryResult{Entries: entries}, nil
}

func applyLimitOffset(entries []Entry, offset, limit *int) []Entry {
	start := 0
	if offset != nil {
		start = *offset
	}
	if start > len(entries) {
		return nil
	}
	entries = entries[start:]
	if limit != nil && *limit < len(entries) {
		entries = entries[:*limit]
	}
	return entries
}
