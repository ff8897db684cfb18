// Package tuple implements Component I (spec.md §4.E): runtime-sized
// packed row tuples used as group-by and order-by keys, plus the
// comparator generator that sorts them.
package tuple

import (
	"fmt"

	"github.com/nishad/silo/internal/column"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/table"
)

const opDescriptor errors.Op = "tuple.NewDescriptor"

// FieldKind is the closed set of packed field encodings of spec.md §4.E.
type FieldKind uint8

const (
	FieldString FieldKind = iota
	FieldIndexedString
	FieldInt
	FieldFloat
	FieldDate
	FieldBool
)

// Size returns the field's fixed width in bytes within a tuple.
func (k FieldKind) Size() int {
	switch k {
	case FieldString:
		return 16
	case FieldIndexedString:
		return 4
	case FieldInt:
		return 4
	case FieldFloat:
		return 8
	case FieldDate:
		return 4
	case FieldBool:
		return 1
	default:
		panic(fmt.Sprintf("tuple: unknown field kind %d", k))
	}
}

// Field is one column's slot within a Descriptor's layout.
type Field struct {
	Name   string
	Kind   FieldKind
	Offset int
}

// Descriptor is the runtime-described layout of a Tuple: an ordered list
// of Fields, in the order their byte ranges appear in the buffer — the
// columns-descriptor order of spec.md §4.E, which need not match the
// user-visible column order a caller requested.
type Descriptor struct {
	Fields []Field
	Size   int
}

// FieldByName returns a field's layout by column name.
func (d *Descriptor) FieldByName(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func fieldKindForColumn(t column.Type) (FieldKind, bool) {
	switch t {
	case column.Bool:
		return FieldBool, true
	case column.Int:
		return FieldInt, true
	case column.Float:
		return FieldFloat, true
	case column.Date:
		return FieldDate, true
	case column.String:
		return FieldString, true
	case column.IndexedString:
		return FieldIndexedString, true
	default:
		return 0, false
	}
}

// NewDescriptor builds the packed layout for the given scalar column names
// against schema, in the order given. Sequence and ZSTD-compressed-string
// columns cannot be tuple fields (neither is ever a groupBy/orderBy
// target, per spec.md §4.D) and are rejected with BadRequest.
func NewDescriptor(schema *table.Schema, columnNames []string) (*Descriptor, error) {
	fields := make([]Field, 0, len(columnNames))
	offset := 0
	for _, name := range columnNames {
		meta, ok := schema.Column(name)
		if !ok {
			return nil, errors.BadRequest(opDescriptor, fmt.Sprintf("unknown column %q", name))
		}
		kind, ok := fieldKindForColumn(meta.Type)
		if !ok {
			return nil, errors.BadRequest(opDescriptor, fmt.Sprintf("column %q: type %s cannot be used as a tuple field", name, meta.Type))
		}
		fields = append(fields, Field{Name: name, Kind: kind, Offset: offset})
		offset += kind.Size()
	}
	return &Descriptor{Fields: fields, Size: offset}, nil
}
