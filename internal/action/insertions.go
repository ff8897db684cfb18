package action

import (
	"github.com/nishad/silo/internal/bitmapx"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/table"
)

const opInsertions errors.Op = "action.executeInsertionAggregation"

// executeInsertionAggregation implements spec.md §4.D's
// InsertionAggregation action: per inserted literal per position, count
// the filtered rows carrying it, across every sequence column in
// SequenceNames (every sequence column in the schema if empty).
func (a *Action) executeInsertionAggregation(t *table.Table, bitmaps []*bitmapx.Bitmap) ([]Entry, error) {
	columns, err := a.resolveInsertionColumns(t.Schema)
	if err != nil {
		return nil, err
	}

	type key struct {
		sequenceName string
		position     int
		text         string
	}
	counts := make(map[key]uint64)
	order := make([]key, 0)

	for pi, part := range t.Partitions {
		filter := bitmaps[pi]
		if filter.IsEmpty() {
			continue
		}
		for _, sc := range columns {
			store := part.Sequences[sc.Name]
			for _, position := range store.Insertions.Positions() {
				for text, bitmap := range store.Insertions.ByText(position) {
					matching := bitmap.Clone()
					matching.And(filter)
					n := matching.Cardinality()
					if n == 0 {
						continue
					}
					k := key{sequenceName: sc.Name, position: position, text: text}
					if _, ok := counts[k]; !ok {
						order = append(order, k)
					}
					counts[k] += n
				}
			}
		}
	}

	entries := make([]Entry, 0, len(order))
	for _, k := range order {
		entries = append(entries, Entry{
			"position":        k.position + 1,
			"insertedSymbols": k.text,
			"sequenceName":    k.sequenceName,
			"count":           int(counts[k]),
		})
	}

	sortEntries(entries, a.OrderBy, a.RandomizeSeed)
	return entries, nil
}

func (a *Action) resolveInsertionColumns(schema *table.Schema) ([]table.SequenceColumn, error) {
	if len(a.SequenceNames) == 0 {
		return schema.SequenceColumns, nil
	}
	out := make([]table.SequenceColumn, 0, len(a.SequenceNames))
	for _, name := range a.SequenceNames {
		sc, ok := schema.SequenceColumnByName(name)
		if !ok {
			return nil, errors.BadRequest(opInsertions, "unknown sequence column "+name)
		}
		out = append(out, sc)
	}
	return out, nil
}
