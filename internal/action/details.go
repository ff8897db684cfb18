package action

import (
	"github.com/nishad/silo/internal/bitmapx"
	"github.com/nishad/silo/internal/column"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/table"
)

const opDetails errors.Op = "action.executeDetails"

// executeDetails implements spec.md §4.D's Details action: project Fields
// (or, if empty, every scalar/string column in schema order) for each
// filtered row, one Entry per row.
func (a *Action) executeDetails(t *table.Table, bitmaps []*bitmapx.Bitmap) ([]Entry, error) {
	fields := a.Fields
	if len(fields) == 0 {
		fields = defaultDetailFields(t.Schema)
	}

	var entries []Entry
	for pi, p := range t.Partitions {
		it := bitmaps[pi].Iterator()
		for it.HasNext() {
			row := int(it.Next())
			entry := make(Entry, len(fields))
			for _, name := range fields {
				v, err := readColumnValue(p, name, row)
				if err != nil {
					return nil, err
				}
				entry[name] = v
			}
			entries = append(entries, entry)
		}
	}

	sortEntries(entries, a.OrderBy, a.RandomizeSeed)
	return entries, nil
}

// defaultDetailFields returns every scalar/string column name, in schema
// order, excluding sequence columns (those are Fasta/FastaAligned's job).
func defaultDetailFields(schema *table.Schema) []string {
	names := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
	}
	return names
}

// readColumnValue decodes one scalar/string column's value at row, nil for
// null, dispatching on the column's declared type the same way
// internal/tuple.Decode does for the narrower set of types it packs.
func readColumnValue(p *table.Partition, name string, row int) (any, error) {
	meta, ok := p.Schema().Column(name)
	if !ok {
		return nil, errors.BadRequest(opDetails, "unknown field "+name)
	}
	switch meta.Type {
	case column.Bool:
		if v, ok := p.Bools[name].Get(row); ok {
			return v, nil
		}
		return nil, nil
	case column.Int:
		if v, ok := p.Ints[name].Get(row); ok {
			return v, nil
		}
		return nil, nil
	case column.Float:
		if v, ok := p.Floats[name].Get(row); ok {
			return v, nil
		}
		return nil, nil
	case column.Date:
		if v, ok := p.Dates[name].Get(row); ok {
			return v, nil
		}
		return nil, nil
	case column.String:
		return p.Strings[name].Get(row), nil
	case column.IndexedString:
		if v, ok := p.Indexed[name].Get(row); ok {
			return v, nil
		}
		return nil, nil
	case column.ZstdCompressedString:
		v, ok, err := p.Zstd[name].Get(row)
		if err != nil {
			return nil, errors.E(opDetails, err, "decompressing "+name)
		}
		if !ok {
			return nil, nil
		}
		return v, nil
	default:
		return nil, errors.BadRequest(opDetails, "field "+name+" is not a scalar column")
	}
}
