// Package table implements Component E (spec.md §3): the table schema and
// its partitions, the unit a query runs against. A PartitionBuilder's
// append/finalize lifecycle is grounded on
// original_source/src/silo/append/database_inserter.cpp's
// TablePartitionInserter.insert()/commit() pair.
package table

import (
	"fmt"

	"github.com/nishad/silo/internal/alphabet"
	"github.com/nishad/silo/internal/column"
)

// SequenceColumn is the type-specific metadata for a NUC_SEQUENCE or
// AA_SEQUENCE column: its alphabet and global reference sequence.
type SequenceColumn struct {
	Name              string
	Alphabet          *alphabet.Alphabet
	Reference         []alphabet.Symbol
	IsDefaultSequence bool
}

// Schema describes a table's columns, per spec.md §3: an ordered list of
// scalar/string columns, an ordered list of sequence columns, and which
// scalar STRING column is the primary key.
type Schema struct {
	Columns         []column.Metadata
	SequenceColumns []SequenceColumn
	PrimaryKey      string
}

// Validate checks the schema's own closed-set invariants: exactly one
// STRING primary key column, unique column names, at most one default
// sequence column per alphabet.
func (s *Schema) Validate() error {
	names := make(map[string]bool)
	var primaryKeyType column.Type
	foundPrimaryKey := false
	for _, c := range s.Columns {
		if names[c.Name] {
			return fmt.Errorf("schema: duplicate column name %q", c.Name)
		}
		names[c.Name] = true
		if c.Name == s.PrimaryKey {
			foundPrimaryKey = true
			primaryKeyType = c.Type
		}
	}
	if !foundPrimaryKey {
		return fmt.Errorf("schema: primary key column %q not declared", s.PrimaryKey)
	}
	if primaryKeyType != column.String {
		return fmt.Errorf("schema: primary key column %q must be STRING, got %s", s.PrimaryKey, primaryKeyType)
	}

	defaultPerAlphabet := make(map[string]string)
	for _, sc := range s.SequenceColumns {
		if names[sc.Name] {
			return fmt.Errorf("schema: duplicate column name %q", sc.Name)
		}
		names[sc.Name] = true
		if sc.IsDefaultSequence {
			if existing, ok := defaultPerAlphabet[sc.Alphabet.Name]; ok {
				return fmt.Errorf("schema: both %q and %q are marked default for alphabet %s", existing, sc.Name, sc.Alphabet.Name)
			}
			defaultPerAlphabet[sc.Alphabet.Name] = sc.Name
		}
	}
	return nil
}

// Column returns the metadata for a scalar/string column by name.
func (s *Schema) Column(name string) (column.Metadata, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return column.Metadata{}, false
}

// SequenceColumnByName returns a sequence column's metadata by name.
func (s *Schema) SequenceColumnByName(name string) (SequenceColumn, bool) {
	for _, sc := range s.SequenceColumns {
		if sc.Name == name {
			return sc, true
		}
	}
	return SequenceColumn{}, false
}

// DefaultSequenceColumn returns the sequence column marked default for the
// given alphabet name, so filter nodes may omit the sequence name.
func (s *Schema) DefaultSequenceColumn(alphabetName string) (SequenceColumn, bool) {
	for _, sc := range s.SequenceColumns {
		if sc.Alphabet.Name == alphabetName && sc.IsDefaultSequence {
			return sc, true
		}
	}
	return SequenceColumn{}, false
}
