package table

import (
	"github.com/nishad/silo/internal/column"
	"github.com/nishad/silo/internal/errors"
)

const opTable errors.Op = "table.Table"

// Table is Component E's top-level object: a schema plus the ordered list
// of partitions it governs, per spec.md §3. A Table owns the one string
// interner shared by all of its partitions' STRING columns, so fingerprints
// stay comparable across partitions.
type Table struct {
	Schema     *Schema
	Partitions []*Partition
	interner   *column.Interner
}

// NewTable validates schema and returns an empty table ready to accept
// partitions.
func NewTable(schema *Schema) (*Table, error) {
	if err := schema.Validate(); err != nil {
		return nil, errors.WrapKind(opTable, errors.KindPreprocessing, "invalid schema", err)
	}
	return &Table{Schema: schema, interner: column.NewInterner()}, nil
}

// Interner returns the table's shared string intern table.
func (t *Table) Interner() *column.Interner { return t.interner }

// NewPartitionBuilder returns a builder for a new partition of this
// table's schema, sharing the table's interner.
func (t *Table) NewPartitionBuilder() *PartitionBuilder {
	return NewPartitionBuilder(t.Schema, t.interner)
}

// AddPartition appends a finalized partition to the table, enforcing the
// primary-key uniqueness invariant of spec.md §3 across all partitions. A
// violation refuses the commit with DuplicatePrimaryKeyException, per
// spec.md §7 ("raised by Table.validate() ... the operation is refused").
func (t *Table) AddPartition(p *Partition) error {
	if !p.Finalized {
		return errors.E(opTable, errors.KindPreprocessing, "cannot add a non-finalized partition")
	}

	seen := make(map[string]bool)
	for _, existing := range t.Partitions {
		for row := 0; row < existing.RowCount(); row++ {
			seen[existing.PrimaryKeyAt(row)] = true
		}
	}
	for row := 0; row < p.RowCount(); row++ {
		key := p.PrimaryKeyAt(row)
		if seen[key] {
			return errors.DuplicatePrimaryKey(opTable, key)
		}
		seen[key] = true
	}

	t.Partitions = append(t.Partitions, p)
	return nil
}

// Validate re-checks the primary-key uniqueness invariant across every
// partition currently in the table, per spec.md §3.
func (t *Table) Validate() error {
	seen := make(map[string]bool)
	for _, p := range t.Partitions {
		for row := 0; row < p.RowCount(); row++ {
			key := p.PrimaryKeyAt(row)
			if seen[key] {
				return errors.DuplicatePrimaryKey(opTable, key)
			}
			seen[key] = true
		}
	}
	return nil
}

// RowCount returns the total row count across every partition.
func (t *Table) RowCount() int {
	total := 0
	for _, p := range t.Partitions {
		total += p.RowCount()
	}
	return total
}
