// Persistence implements the spec.md §6 contract: "a database on disk is a
// directory containing one file per partition (P<i>.silo, binary) plus a
// schema descriptor" that "must be self-describing enough for an identical
// build of the engine to round-trip it." SILO uses encoding/gob, which is
// self-describing via Go's own type registration, rather than a bespoke
// wire format the retrieval pack shows no precedent for (see DESIGN.md).
package table

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nishad/silo/internal/alphabet"
	"github.com/nishad/silo/internal/column"
	"github.com/nishad/silo/internal/errors"
)

const opPersistence errors.Op = "table.persistence"

// schemaDescriptor is the JSON-serializable mirror of Schema: column
// metadata only, no live *alphabet.Alphabet pointers (looked back up by
// name on load) and no intern table (persisted separately, once, alongside
// the partitions that share it).
type schemaDescriptor struct {
	PrimaryKey      string                     `json:"primaryKey"`
	Columns         []columnDescriptor         `json:"columns"`
	SequenceColumns []sequenceColumnDescriptor `json:"sequenceColumns"`
	PartitionCount  int                        `json:"partitionCount"`
}

type columnDescriptor struct {
	Name              string      `json:"name"`
	Type              column.Type `json:"type"`
	ZstdDictionary    []byte      `json:"zstdDictionary,omitempty"`
	ReferenceSequence string      `json:"referenceSequence,omitempty"`
	IsDefaultSequence bool        `json:"isDefaultSequence,omitempty"`
}

type sequenceColumnDescriptor struct {
	Name              string `json:"name"`
	AlphabetName      string `json:"alphabetName"`
	Reference         string `json:"reference"`
	IsDefaultSequence bool   `json:"isDefaultSequence"`
}

func (s *Schema) toDescriptor() schemaDescriptor {
	desc := schemaDescriptor{PrimaryKey: s.PrimaryKey}
	for _, c := range s.Columns {
		desc.Columns = append(desc.Columns, columnDescriptor{
			Name:              c.Name,
			Type:              c.Type,
			ZstdDictionary:    c.ZstdDictionary,
			ReferenceSequence: c.ReferenceSequence,
			IsDefaultSequence: c.IsDefaultSequence,
		})
	}
	for _, sc := range s.SequenceColumns {
		desc.SequenceColumns = append(desc.SequenceColumns, sequenceColumnDescriptor{
			Name:              sc.Name,
			AlphabetName:      sc.Alphabet.Name,
			Reference:         sc.Alphabet.DecodeString(sc.Reference),
			IsDefaultSequence: sc.IsDefaultSequence,
		})
	}
	return desc
}

func schemaFromDescriptor(desc schemaDescriptor) (*Schema, error) {
	schema := &Schema{PrimaryKey: desc.PrimaryKey}
	for _, c := range desc.Columns {
		schema.Columns = append(schema.Columns, column.Metadata{
			Name:              c.Name,
			Type:              c.Type,
			ZstdDictionary:    c.ZstdDictionary,
			ReferenceSequence: c.ReferenceSequence,
			IsDefaultSequence: c.IsDefaultSequence,
		})
	}
	for _, sc := range desc.SequenceColumns {
		a, err := alphabetByName(sc.AlphabetName)
		if err != nil {
			return nil, err
		}
		symbols, err := a.EncodeString(sc.Reference)
		if err != nil {
			return nil, errors.WrapKind(opPersistence, errors.KindLoadDatabase, fmt.Sprintf("sequence column %q reference", sc.Name), err)
		}
		schema.SequenceColumns = append(schema.SequenceColumns, SequenceColumn{
			Name:              sc.Name,
			Alphabet:          a,
			Reference:         symbols,
			IsDefaultSequence: sc.IsDefaultSequence,
		})
	}
	return schema, nil
}

func alphabetByName(name string) (*alphabet.Alphabet, error) {
	switch name {
	case alphabet.Nuc.Name:
		return alphabet.Nuc, nil
	case alphabet.AA.Name:
		return alphabet.AA, nil
	default:
		return nil, errors.E(opPersistence, errors.KindLoadDatabase, fmt.Sprintf("unknown alphabet %q", name))
	}
}

// Save gob-encodes the partition to w. The partition's own schema pointer
// and string interner are intentionally gob-invisible (unexported fields);
// a caller reloading the partition supplies both from the owning Table.
func (p *Partition) Save(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(p); err != nil {
		return errors.WrapKind(opPersistence, errors.KindSaveDatabase, "encode partition", err)
	}
	return nil
}

// LoadPartition decodes a partition previously written by Save, attaching
// it to schema and resolving its STRING columns through interner.
func LoadPartition(r io.Reader, schema *Schema, interner *column.Interner) (*Partition, error) {
	p := &Partition{}
	if err := gob.NewDecoder(r).Decode(p); err != nil {
		return nil, errors.WrapKind(opPersistence, errors.KindLoadDatabase, "decode partition", err)
	}
	p.schema = schema
	p.interner = interner
	for _, sp := range p.Strings {
		sp.SetInterner(interner)
	}
	return p, nil
}

// Save writes a database directory per spec.md §6: schema.json plus one
// P<i>.silo per partition.
func (t *Table) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapKind(opPersistence, errors.KindSaveDatabase, "create database directory", err)
	}

	desc := t.Schema.toDescriptor()
	desc.PartitionCount = len(t.Partitions)
	schemaBytes, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return errors.WrapKind(opPersistence, errors.KindSaveDatabase, "marshal schema descriptor", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "schema.json"), schemaBytes, 0o644); err != nil {
		return errors.WrapKind(opPersistence, errors.KindSaveDatabase, "write schema descriptor", err)
	}

	internBytes, err := t.interner.GobEncode()
	if err != nil {
		return errors.WrapKind(opPersistence, errors.KindSaveDatabase, "encode string interner", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "interner.gob"), internBytes, 0o644); err != nil {
		return errors.WrapKind(opPersistence, errors.KindSaveDatabase, "write string interner", err)
	}

	for i, p := range t.Partitions {
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("P%d.silo", i)))
		if err != nil {
			return errors.WrapKind(opPersistence, errors.KindSaveDatabase, "create partition file", err)
		}
		err = p.Save(f)
		closeErr := f.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return errors.WrapKind(opPersistence, errors.KindSaveDatabase, "close partition file", closeErr)
		}
	}
	return nil
}

// LoadTable reads a database directory written by Table.Save.
func LoadTable(dir string) (*Table, error) {
	schemaBytes, err := os.ReadFile(filepath.Join(dir, "schema.json"))
	if err != nil {
		return nil, errors.WrapKind(opPersistence, errors.KindLoadDatabase, "read schema descriptor", err)
	}
	var desc schemaDescriptor
	if err := json.Unmarshal(schemaBytes, &desc); err != nil {
		return nil, errors.WrapKind(opPersistence, errors.KindLoadDatabase, "parse schema descriptor", err)
	}
	schema, err := schemaFromDescriptor(desc)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		return nil, errors.WrapKind(opPersistence, errors.KindLoadDatabase, "invalid schema descriptor", err)
	}

	t := &Table{Schema: schema, interner: column.NewInterner()}
	internBytes, err := os.ReadFile(filepath.Join(dir, "interner.gob"))
	if err != nil {
		return nil, errors.WrapKind(opPersistence, errors.KindLoadDatabase, "read string interner", err)
	}
	if err := t.interner.GobDecode(internBytes); err != nil {
		return nil, errors.WrapKind(opPersistence, errors.KindLoadDatabase, "decode string interner", err)
	}

	for i := 0; i < desc.PartitionCount; i++ {
		f, err := os.Open(filepath.Join(dir, fmt.Sprintf("P%d.silo", i)))
		if err != nil {
			return nil, errors.WrapKind(opPersistence, errors.KindLoadDatabase, "open partition file", err)
		}
		p, err := LoadPartition(f, schema, t.interner)
		closeErr := f.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, errors.WrapKind(opPersistence, errors.KindLoadDatabase, "close partition file", closeErr)
		}
		t.Partitions = append(t.Partitions, p)
	}
	return t, nil
}
