package tuple

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/blainsmith/seahash"
	"github.com/nishad/silo/internal/column"
	"github.com/nishad/silo/internal/errors"
)

const opComparator errors.Op = "tuple.NewComparator"

// OrderField is one `{field, ascending}` entry of an action's orderBy
// list, per spec.md §4.D.
type OrderField struct {
	Name      string
	Ascending bool
}

// Comparator is a total order over tuples of one Descriptor, built from an
// orderBy list: each entry stores the byte offset into the tuple and the
// column's semantic type (spec.md §4.E), compared in listed order; a
// randomizeSeed breaks remaining ties deterministically by hashing the
// full tuple.
type Comparator struct {
	fields   []OrderField
	layout   []Field
	interner *column.Interner
	seed     *uint64
}

// NewComparator builds a Comparator for orderBy against desc; every
// orderBy field must already be one of desc's packed fields (the action
// layer resolves virtual fields like "primaryKey" or "count" to real or
// synthetic descriptor fields before calling this, per spec.md §4.D).
// interner is required only if a STRING field appears in orderBy and two
// tuples share an 8-byte fingerprint prefix without being byte-identical,
// in which case true string order requires resolving the canonical
// strings.
func NewComparator(desc *Descriptor, interner *column.Interner, orderBy []OrderField, seed *uint64) (*Comparator, error) {
	layout := make([]Field, 0, len(orderBy))
	for _, of := range orderBy {
		f, ok := desc.FieldByName(of.Name)
		if !ok {
			return nil, errors.BadRequest(opComparator, fmt.Sprintf("orderBy: unknown field %q", of.Name))
		}
		layout = append(layout, f)
	}
	return &Comparator{fields: orderBy, layout: layout, interner: interner, seed: seed}, nil
}

// Less reports whether a sorts before b under this comparator's orderBy
// list, falling back to a seeded hash comparison on a full tie when a seed
// is set.
func (c *Comparator) Less(a, b Tuple) bool {
	for i, of := range c.fields {
		field := c.layout[i]
		cmp := compareField(field, a, b, c.interner)
		if cmp == 0 {
			continue
		}
		if of.Ascending {
			return cmp < 0
		}
		return cmp > 0
	}
	if c.seed != nil {
		ha := randomizedKey(a, *c.seed)
		hb := randomizedKey(b, *c.seed)
		return ha < hb
	}
	return false
}

// randomizedKey hashes a tuple's bytes together with seed using seahash —
// the same hash library the STRING column already wires in for SiloString
// fingerprints — giving a tie-break that is a deterministic function of
// seed, per spec.md §8's testable property.
func randomizedKey(t Tuple, seed uint64) uint64 {
	buf := make([]byte, 8+len(t))
	binary.LittleEndian.PutUint64(buf, seed)
	copy(buf[8:], t)
	return seahash.Sum64(buf)
}

// compareField returns -1/0/1 comparing a, b at field, with nulls/NaN
// sorting last in ascending order (flipped to first by the caller's
// descending branch), per spec.md §4.D's ordering contract.
func compareField(field Field, a, b Tuple, interner *column.Interner) int {
	bufA := a[field.Offset : field.Offset+field.Kind.Size()]
	bufB := b[field.Offset : field.Offset+field.Kind.Size()]

	switch field.Kind {
	case FieldBool:
		return compareNullLast(bufA[0] == 0x00, bufB[0] == 0x00, func() int {
			va, vb := bufA[0], bufB[0]
			switch {
			case va == vb:
				return 0
			case va < vb:
				return -1
			default:
				return 1
			}
		})
	case FieldInt:
		va := int32(binary.LittleEndian.Uint32(bufA))
		vb := int32(binary.LittleEndian.Uint32(bufB))
		return compareNullLast(va == column.IntNull, vb == column.IntNull, func() int {
			return compareInt64(int64(va), int64(vb))
		})
	case FieldDate:
		va := int32(binary.LittleEndian.Uint32(bufA))
		vb := int32(binary.LittleEndian.Uint32(bufB))
		return compareNullLast(va == 0, vb == 0, func() int {
			return compareInt64(int64(va), int64(vb))
		})
	case FieldFloat:
		va := math.Float64frombits(binary.LittleEndian.Uint64(bufA))
		vb := math.Float64frombits(binary.LittleEndian.Uint64(bufB))
		return compareNullLast(math.IsNaN(va), math.IsNaN(vb), func() int {
			switch {
			case va == vb:
				return 0
			case va < vb:
				return -1
			default:
				return 1
			}
		})
	case FieldIndexedString:
		va := int32(binary.LittleEndian.Uint32(bufA))
		vb := int32(binary.LittleEndian.Uint32(bufB))
		return compareNullLast(va < 0, vb < 0, func() int {
			return compareInt64(int64(va), int64(vb))
		})
	case FieldString:
		return compareStringField(bufA, bufB, interner)
	default:
		return 0
	}
}

func compareNullLast(aNull, bNull bool, cmp func() int) int {
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return 1
	case bNull:
		return -1
	default:
		return cmp()
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a == b:
		return 0
	case a < b:
		return -1
	default:
		return 1
	}
}

// compareStringField implements the "string via fingerprint fast-path
// then full string" ordering of spec.md §4.E: equal fingerprints are
// equal outright; fingerprints sharing their 8-byte raw-bytes prefix but
// differing in hash (strings longer than 8 bytes diverging past the
// prefix) resolve through the interner for true lexical order; otherwise
// the 8-byte prefix itself already orders them.
func compareStringField(a, b []byte, interner *column.Interner) int {
	if bytes.Equal(a, b) {
		return 0
	}
	if bytes.Equal(a[:8], b[:8]) && interner != nil {
		var fa, fb column.SiloString
		copy(fa[:], a)
		copy(fb[:], b)
		sa, _ := interner.Resolve(fa)
		sb, _ := interner.Resolve(fb)
		return strings.Compare(sa, sb)
	}
	return bytes.Compare(a[:8], b[:8])
}
