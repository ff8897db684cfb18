package action

import (
	"fmt"

	"github.com/nishad/silo/internal/bitmapx"
	"github.com/nishad/silo/internal/table"
	"github.com/nishad/silo/internal/tuple"
)

// executeAggregated implements spec.md §4.D's Aggregated action: for each
// partition, build a tuple over groupBy columns per filtered row and
// increment a counter keyed by it; merge per-partition counts; emit
// `{group columns, count}` (or a single `{count}` if groupBy is empty).
//
// Grouping keys are the *decoded* field values rather than raw tuple
// bytes: INDEXED_STRING packs a per-partition dictionary code (spec.md
// §3), so the same string can carry different codes in different
// partitions — merging per-partition maps by raw tuple bytes would split
// one logical group in two. Decoding through internal/tuple.Decode before
// keying fixes this while still exercising the tuple layer's packing
// (Descriptor, TupleFactory, Overwrite) for each row exactly as spec.md
// §4.E describes.
func (a *Action) executeAggregated(t *table.Table, bitmaps []*bitmapx.Bitmap) ([]Entry, error) {
	if len(a.GroupBy) == 0 {
		var total uint64
		for _, b := range bitmaps {
			total += b.Cardinality()
		}
		return []Entry{{"count": int(total)}}, nil
	}

	desc, err := tuple.NewDescriptor(t.Schema, a.GroupBy)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	samples := make(map[string][]any)

	for pi, p := range t.Partitions {
		factory := tuple.NewTupleFactory(desc)
		it := bitmaps[pi].Iterator()
		for it.HasNext() {
			row := it.Next()
			tup := factory.AllocateOne()
			if err := tuple.Overwrite(tup, desc, p, int(row)); err != nil {
				return nil, err
			}
			values := make([]any, len(desc.Fields))
			for fi, f := range desc.Fields {
				v, err := tuple.Decode(tup, f, p)
				if err != nil {
					return nil, err
				}
				values[fi] = v
			}
			key := groupKey(values)
			counts[key]++
			if _, ok := samples[key]; !ok {
				samples[key] = values
			}
		}
	}

	entries := make([]Entry, 0, len(counts))
	for key, count := range counts {
		values := samples[key]
		entry := make(Entry, len(desc.Fields)+1)
		for fi, f := range desc.Fields {
			entry[f.Name] = values[fi]
		}
		entry["count"] = count
		entries = append(entries, entry)
	}

	if len(a.OrderBy) > 0 {
		sortEntries(entries, a.OrderBy, a.RandomizeSeed)
	}
	return entries, nil
}

func groupKey(values []any) string {
	key := ""
	for _, v := range values {
		key += fmt.Sprintf("%T:%v|", v, v)
	}
	return key
}
