package table

import (
	"fmt"
	"time"

	"github.com/nishad/silo/internal/alphabet"
	"github.com/nishad/silo/internal/column"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/sequencestore"
)

// Row is one record to append to a partition, in already-decoded Go values.
// Decoding NDJSON/FASTA/TSV into a Row is ingestion plumbing and stays out
// of scope per spec.md §1; AppendRow only validates and indexes values it
// is handed.
type Row struct {
	Scalars   map[string]any
	Sequences map[string]SequenceValue
}

// SequenceValue is one row's contribution to a sequence column: either a
// fully missing row (Null) or a sequence of symbols plus any insertions,
// matching SequenceStore.Append/AppendNull (spec.md §4.A).
type SequenceValue struct {
	Null       bool
	Symbols    []alphabet.Symbol
	Offset     int
	Insertions map[int]string
}

// Partition is Component E's table partition (spec.md §3): an ordered set
// of column partitions and sequence stores sharing one schema, built via
// NewPartitionBuilder/AppendRow/Finalize and read-only afterward.
type Partition struct {
	schema *Schema

	Bools   map[string]*column.BoolPartition
	Ints    map[string]*column.IntPartition
	Floats  map[string]*column.FloatPartition
	Dates   map[string]*column.DatePartition
	Strings map[string]*column.StringPartition
	Indexed map[string]*column.IndexedStringPartition
	Zstd    map[string]*column.ZstdStringPartition

	Sequences map[string]*sequencestore.SequenceStore
	interner  *column.Interner

	Rows      int
	Finalized bool
}

func newPartition(schema *Schema, interner *column.Interner) *Partition {
	p := &Partition{
		schema:    schema,
		Bools:     make(map[string]*column.BoolPartition),
		Ints:      make(map[string]*column.IntPartition),
		Floats:    make(map[string]*column.FloatPartition),
		Dates:     make(map[string]*column.DatePartition),
		Strings:   make(map[string]*column.StringPartition),
		Indexed:   make(map[string]*column.IndexedStringPartition),
		Zstd:      make(map[string]*column.ZstdStringPartition),
		Sequences: make(map[string]*sequencestore.SequenceStore),
		interner:  interner,
	}
	for _, c := range schema.Columns {
		switch c.Type {
		case column.Bool:
			p.Bools[c.Name] = column.NewBoolPartition(c.Name)
		case column.Int:
			p.Ints[c.Name] = column.NewIntPartition(c.Name)
		case column.Float:
			p.Floats[c.Name] = column.NewFloatPartition(c.Name)
		case column.Date:
			p.Dates[c.Name] = column.NewDatePartition(c.Name)
		case column.String:
			p.Strings[c.Name] = column.NewStringPartition(c.Name, interner)
		case column.IndexedString:
			p.Indexed[c.Name] = column.NewIndexedStringPartition(c.Name)
		case column.ZstdCompressedString:
			z, err := column.NewZstdStringPartition(c.Name, c.ZstdDictionary)
			errors.MustHandle(err)
			p.Zstd[c.Name] = z
		}
	}
	for _, sc := range schema.SequenceColumns {
		p.Sequences[sc.Name] = sequencestore.NewSequenceStore(sc.Name, sc.Alphabet, sc.Reference)
	}
	return p
}

// RowCount returns the number of rows in the partition.
func (p *Partition) RowCount() int { return p.Rows }

// Schema returns the partition's schema.
func (p *Partition) Schema() *Schema { return p.schema }

// Interner returns the process-local string intern table backing this
// partition's STRING columns.
func (p *Partition) Interner() *column.Interner { return p.interner }

// PrimaryKeyAt returns the primary-key string of the given row.
func (p *Partition) PrimaryKeyAt(row int) string {
	return p.Strings[p.schema.PrimaryKey].Get(row)
}

// PartitionBuilder drives a Partition's append/finalize lifecycle, per
// spec.md §3 ("Partitions are built by appending rows ... then
// finalize()ed ... After finalisation a partition is read-only").
type PartitionBuilder struct {
	partition *Partition
}

// NewPartitionBuilder returns a builder for a new, empty partition of the
// given schema, with STRING columns backed by the given shared interner.
func NewPartitionBuilder(schema *Schema, interner *column.Interner) *PartitionBuilder {
	return &PartitionBuilder{partition: newPartition(schema, interner)}
}

const opAppendRow errors.Op = "table.AppendRow"

// AppendRow validates row against the schema and appends it to every
// column partition and sequence store, per
// original_source/src/silo/append/database_inserter.cpp's per-row append
// loop: each column's and sequence store's append is driven in lockstep,
// one row at a time.
func (b *PartitionBuilder) AppendRow(row Row) error {
	p := b.partition
	if p.Finalized {
		return errors.E(opAppendRow, errors.KindPreprocessing, "append after finalize")
	}

	for _, c := range p.schema.Columns {
		v := row.Scalars[c.Name]
		switch c.Type {
		case column.Bool:
			bv, err := asBoolPtr(c.Name, v)
			if err != nil {
				return err
			}
			p.Bools[c.Name].Append(bv)
		case column.Int:
			iv, err := asInt32Ptr(c.Name, v)
			if err != nil {
				return err
			}
			p.Ints[c.Name].Append(iv)
		case column.Float:
			fv, err := asFloat64Ptr(c.Name, v)
			if err != nil {
				return err
			}
			p.Floats[c.Name].Append(fv)
		case column.Date:
			dv, err := asDatePtr(c.Name, v)
			if err != nil {
				return err
			}
			p.Dates[c.Name].Append(dv)
		case column.String:
			s, ok := v.(string)
			if !ok {
				return errors.E(opAppendRow, errors.KindPreprocessing, fmt.Sprintf("column %q: primary key/string column requires a non-null string, got %T", c.Name, v))
			}
			p.Strings[c.Name].Append(s)
		case column.IndexedString:
			sv, err := asStringPtr(c.Name, v)
			if err != nil {
				return err
			}
			p.Indexed[c.Name].Append(sv)
		case column.ZstdCompressedString:
			sv, err := asStringPtr(c.Name, v)
			if err != nil {
				return err
			}
			p.Zstd[c.Name].Append(sv)
		}
	}

	for _, sc := range p.schema.SequenceColumns {
		store := p.Sequences[sc.Name]
		sv, ok := row.Sequences[sc.Name]
		if !ok || sv.Null {
			store.AppendNull()
			continue
		}
		if err := store.Append(sv.Symbols, sv.Offset, sv.Insertions); err != nil {
			return errors.WrapKind(opAppendRow, errors.KindPreprocessing, fmt.Sprintf("sequence column %q", sc.Name), err)
		}
	}

	p.Rows++
	return nil
}

// Finalize runs the read-only transition of spec.md §3's lifecycle:
// shrink every column to fit, finalize every sequence store (adapts the
// local reference, compresses indexes), and marks the partition read-only.
func (b *PartitionBuilder) Finalize() *Partition {
	p := b.partition
	for _, c := range p.Bools {
		c.ShrinkToFit()
	}
	for _, c := range p.Ints {
		c.ShrinkToFit()
	}
	for _, c := range p.Floats {
		c.ShrinkToFit()
	}
	for _, c := range p.Dates {
		c.ShrinkToFit()
	}
	for _, c := range p.Strings {
		c.ShrinkToFit()
	}
	for _, c := range p.Indexed {
		c.ShrinkToFit()
	}
	for _, c := range p.Zstd {
		c.ShrinkToFit()
	}
	for _, s := range p.Sequences {
		s.Finalize()
	}
	p.Finalized = true
	return p
}

func asBoolPtr(name string, v any) (*bool, error) {
	if v == nil {
		return nil, nil
	}
	x, ok := v.(bool)
	if !ok {
		return nil, errors.E(opAppendRow, errors.KindPreprocessing, fmt.Sprintf("column %q: expected bool, got %T", name, v))
	}
	return &x, nil
}

func asInt32Ptr(name string, v any) (*int32, error) {
	if v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case int32:
		return &x, nil
	case int:
		y := int32(x)
		return &y, nil
	default:
		return nil, errors.E(opAppendRow, errors.KindPreprocessing, fmt.Sprintf("column %q: expected int, got %T", name, v))
	}
}

func asFloat64Ptr(name string, v any) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case float64:
		return &x, nil
	case float32:
		y := float64(x)
		return &y, nil
	default:
		return nil, errors.E(opAppendRow, errors.KindPreprocessing, fmt.Sprintf("column %q: expected float, got %T", name, v))
	}
}

func asDatePtr(name string, v any) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, ok := v.(time.Time)
	if !ok {
		return nil, errors.E(opAppendRow, errors.KindPreprocessing, fmt.Sprintf("column %q: expected time.Time, got %T", name, v))
	}
	return &t, nil
}

func asStringPtr(name string, v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, errors.E(opAppendRow, errors.KindPreprocessing, fmt.Sprintf("column %q: expected string, got %T", name, v))
	}
	return &s, nil
}
