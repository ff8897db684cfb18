package tuple

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/blainsmith/seahash"
	"github.com/nishad/silo/internal/column"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/table"
)

const opOverwrite errors.Op = "tuple.Overwrite"

// arenaChunkSize is the number of tuple-sized slots allocated per arena
// chunk, per spec.md §9's "allocate backing buffers in large chunks" note.
const arenaChunkSize = 4096

// Tuple is a fixed-size packed row view: a byte slice into a
// TupleFactory's arena (or, after CopyTuple, an independently owned
// slice). Equality is memcmp (bytes.Equal); hashing is seahash over the
// buffer, the same fingerprinting library the STRING column already
// wires in for SiloString.
type Tuple []byte

// Equal reports whether two tuples of the same Descriptor are byte-equal.
func Equal(a, b Tuple) bool { return bytes.Equal(a, b) }

// Hash returns a stable hash of the tuple's bytes, usable as a group-by
// map key via string(Tuple) or directly for a custom hash table.
func Hash(t Tuple) uint64 { return seahash.Sum64(t) }

// TupleFactory owns arena-backed storage for tuples of one Descriptor and
// hands out non-owning slices into it, per spec.md §4.E/§9.
type TupleFactory struct {
	Descriptor *Descriptor
	arenas     [][]byte
	used       int // bytes used in the last arena
}

// NewTupleFactory returns a factory for tuples matching desc.
func NewTupleFactory(desc *Descriptor) *TupleFactory {
	return &TupleFactory{Descriptor: desc}
}

func (f *TupleFactory) grow(n int) {
	size := n * f.Descriptor.Size
	if size < arenaChunkSize*f.Descriptor.Size {
		size = arenaChunkSize * f.Descriptor.Size
	}
	f.arenas = append(f.arenas, make([]byte, size))
	f.used = 0
}

// AllocateOne returns a zero-initialized tuple-sized slice from the
// current arena, growing it if exhausted.
func (f *TupleFactory) AllocateOne() Tuple {
	return f.AllocateMany(1)[0]
}

// AllocateMany returns n tuple-sized slices, uninitialized in the sense
// that the caller must Overwrite each before reading it; they are
// zero-filled only because Go zeroes new arena memory, not as a
// documented guarantee.
func (f *TupleFactory) AllocateMany(n int) []Tuple {
	size := f.Descriptor.Size
	if len(f.arenas) == 0 || f.used+n*size > len(f.arenas[len(f.arenas)-1]) {
		f.grow(n)
	}
	arena := f.arenas[len(f.arenas)-1]
	out := make([]Tuple, n)
	for i := 0; i < n; i++ {
		out[i] = Tuple(arena[f.used : f.used+size])
		f.used += size
	}
	return out
}

// CopyTuple returns an independent copy of t, safe to retain past the
// factory's or arena's lifetime (spec.md §9: "any tuple pointers must be
// either copied or tied to the arena's lifetime").
func (f *TupleFactory) CopyTuple(t Tuple) Tuple {
	out := make(Tuple, len(t))
	copy(out, t)
	return out
}

// Overwrite packs row's values from a table partition into tuple, per the
// descriptor's field layout. Every packed representation reuses the raw
// bytes the column partition already stores for that row (SiloString
// fingerprint, INT32_MIN/NaN/day-zero null sentinels, the BOOL
// 0x00/0x80/0x81 encoding), so a tuple's null encoding is bit-identical to
// its source column's.
func Overwrite(tuple Tuple, desc *Descriptor, p *table.Partition, row int) error {
	for _, field := range desc.Fields {
		buf := tuple[field.Offset : field.Offset+field.Kind.Size()]
		switch field.Kind {
		case FieldBool:
			col, ok := p.Bools[field.Name]
			if !ok {
				return errors.E(opOverwrite, errors.KindQueryCompilation, fmt.Sprintf("column %q: not a bool partition", field.Name))
			}
			buf[0] = col.Data[row]
		case FieldInt:
			col, ok := p.Ints[field.Name]
			if !ok {
				return errors.E(opOverwrite, errors.KindQueryCompilation, fmt.Sprintf("column %q: not an int partition", field.Name))
			}
			binary.LittleEndian.PutUint32(buf, uint32(col.Data[row]))
		case FieldFloat:
			col, ok := p.Floats[field.Name]
			if !ok {
				return errors.E(opOverwrite, errors.KindQueryCompilation, fmt.Sprintf("column %q: not a float partition", field.Name))
			}
			binary.LittleEndian.PutUint64(buf, math.Float64bits(col.Data[row]))
		case FieldDate:
			col, ok := p.Dates[field.Name]
			if !ok {
				return errors.E(opOverwrite, errors.KindQueryCompilation, fmt.Sprintf("column %q: not a date partition", field.Name))
			}
			binary.LittleEndian.PutUint32(buf, uint32(col.Data[row]))
		case FieldString:
			col, ok := p.Strings[field.Name]
			if !ok {
				return errors.E(opOverwrite, errors.KindQueryCompilation, fmt.Sprintf("column %q: not a string partition", field.Name))
			}
			fp := col.Fingerprint(row)
			copy(buf, fp[:])
		case FieldIndexedString:
			col, ok := p.Indexed[field.Name]
			if !ok {
				return errors.E(opOverwrite, errors.KindQueryCompilation, fmt.Sprintf("column %q: not an indexed string partition", field.Name))
			}
			binary.LittleEndian.PutUint32(buf, uint32(col.Data[row]))
		}
	}
	return nil
}

// Decode reads a tuple field back into a Go value suitable for JSON
// output: string, int32, float64, time.Time, bool, or nil for null.
// IndexedString decodes via col to resolve its dictionary code to text.
func Decode(tuple Tuple, field Field, p *table.Partition) (any, error) {
	buf := tuple[field.Offset : field.Offset+field.Kind.Size()]
	switch field.Kind {
	case FieldBool:
		switch buf[0] {
		case 0x81:
			return true, nil
		case 0x80:
			return false, nil
		default:
			return nil, nil
		}
	case FieldInt:
		v := int32(binary.LittleEndian.Uint32(buf))
		if v == column.IntNull {
			return nil, nil
		}
		return v, nil
	case FieldFloat:
		v := math.Float64frombits(binary.LittleEndian.Uint64(buf))
		if math.IsNaN(v) {
			return nil, nil
		}
		return v, nil
	case FieldDate:
		days := int32(binary.LittleEndian.Uint32(buf))
		if days == 0 {
			return nil, nil
		}
		return column.DecodeDate(days), nil
	case FieldString:
		var fp column.SiloString
		copy(fp[:], buf)
		if _, ok := p.Strings[field.Name]; !ok {
			return nil, errors.E(opOverwrite, errors.KindQueryCompilation, fmt.Sprintf("column %q: not a string partition", field.Name))
		}
		s, _ := p.Interner().Resolve(fp)
		return s, nil
	case FieldIndexedString:
		code := int32(binary.LittleEndian.Uint32(buf))
		if code < 0 {
			return nil, nil
		}
		col, ok := p.Indexed[field.Name]
		if !ok {
			return nil, errors.E(opOverwrite, errors.KindQueryCompilation, fmt.Sprintf("column %q: not an indexed string partition", field.Name))
		}
		values := col.Values()
		if int(code) >= len(values) {
			return nil, errors.E(opOverwrite, errors.KindQueryCompilation, fmt.Sprintf("column %q: dictionary code %d out of range", field.Name, code))
		}
		return values[code], nil
	default:
		return nil, fmt.Errorf("tuple: unknown field kind %d", field.Kind)
	}
}
