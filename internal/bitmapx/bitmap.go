// Package bitmapx is the thin wrapper over github.com/RoaringBitmap/roaring/v2
// that Component B (spec.md §2) specifies: a container-level union builder,
// a range builder, subset-rank computation, and serialization. The upstream
// Go roaring implementation does not expose its internal container type, so
// the "container-level union" requirement is met via the fallback the spec
// itself allows (§9, "bit-level roaring operations"): one *roaring.Bitmap
// per (position, symbol) pair — which roaring already stores as a forest of
// 2^16-aligned containers internally — unioned with roaring.FastOr, which
// is a single linear pass over those containers.
package bitmapx

import (
	"bytes"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap wraps a roaring bitmap of row ids.
type Bitmap struct {
	rb *roaring.Bitmap
}

// New returns an empty bitmap.
func New() *Bitmap {
	return &Bitmap{rb: roaring.New()}
}

// NewRange returns a bitmap containing every row id in [start, end) — the
// "range builder" of Component B, used by Full(row_count) and by coverage
// predicates.
func NewRange(start, end uint64) *Bitmap {
	b := roaring.New()
	if end > start {
		b.AddRange(start, end)
	}
	return &Bitmap{rb: b}
}

// FromRoaring wraps an existing *roaring.Bitmap without copying.
func FromRoaring(rb *roaring.Bitmap) *Bitmap {
	return &Bitmap{rb: rb}
}

// Raw returns the underlying roaring bitmap.
func (b *Bitmap) Raw() *roaring.Bitmap {
	return b.rb
}

// Add inserts a row id.
func (b *Bitmap) Add(rowID uint32) {
	b.rb.Add(rowID)
}

// AddRange inserts every row id in [start, end).
func (b *Bitmap) AddRange(start, end uint64) {
	b.rb.AddRange(start, end)
}

// Contains reports whether rowID is a member.
func (b *Bitmap) Contains(rowID uint32) bool {
	return b.rb.Contains(rowID)
}

// Cardinality returns the number of members.
func (b *Bitmap) Cardinality() uint64 {
	return b.rb.GetCardinality()
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{rb: b.rb.Clone()}
}

// And intersects other into b in place.
func (b *Bitmap) And(other *Bitmap) {
	b.rb.And(other.rb)
}

// Or unions other into b in place.
func (b *Bitmap) Or(other *Bitmap) {
	b.rb.Or(other.rb)
}

// AndNot removes other's members from b in place.
func (b *Bitmap) AndNot(other *Bitmap) {
	b.rb.AndNot(other.rb)
}

// Flip returns the complement of b restricted to [start, end): the rows in
// that range absent from b. Used to implement Complement(child, row_count).
// roaring.Bitmap's own Flip mutates in place and returns nothing, so this
// goes through the package-level immutable roaring.Flip to leave b intact.
func (b *Bitmap) Flip(start, end uint64) *Bitmap {
	return &Bitmap{rb: roaring.Flip(b.rb, start, end)}
}

// ToArray materializes the bitmap's members in ascending order.
func (b *Bitmap) ToArray() []uint32 {
	return b.rb.ToArray()
}

// Iterator returns an ascending iterator over members, used by the n-way
// heap-merge threshold implementation and by Details/Fasta* row iteration.
func (b *Bitmap) Iterator() roaring.IntPeekable {
	return b.rb.Iterator()
}

// Rank returns the number of members of b that are <= rowID — "subset-rank
// computation" in Component B's responsibility list. It is used to turn a
// row id into a dense 0-based offset within a filtered subset, e.g. when
// materializing group-by tuples only for rows that passed the filter.
func (b *Bitmap) Rank(rowID uint32) uint64 {
	return b.rb.Rank(rowID)
}

// RunOptimize compacts the bitmap's containers, called once during
// Partition.Finalize() per spec.md §3 lifecycle.
func (b *Bitmap) RunOptimize() bool {
	return b.rb.RunOptimize()
}

// FastUnion unions many bitmaps in a single pass — the "container-level
// union builder" of Component B, backing
// SequenceStore.getMatchingContainersAsBitmap (spec.md §4.A).
func FastUnion(bitmaps ...*Bitmap) *Bitmap {
	raws := make([]*roaring.Bitmap, 0, len(bitmaps))
	for _, b := range bitmaps {
		if b != nil {
			raws = append(raws, b.rb)
		}
	}
	if len(raws) == 0 {
		return New()
	}
	return &Bitmap{rb: roaring.FastOr(raws...)}
}

// FastIntersection intersects many bitmaps in a single pass.
func FastIntersection(bitmaps ...*Bitmap) *Bitmap {
	raws := make([]*roaring.Bitmap, 0, len(bitmaps))
	for _, b := range bitmaps {
		if b != nil {
			raws = append(raws, b.rb)
		}
	}
	if len(raws) == 0 {
		return New()
	}
	return &Bitmap{rb: roaring.FastAnd(raws...)}
}

// Equals reports bit-for-bit equality, used by property tests (spec.md §8).
func (b *Bitmap) Equals(other *Bitmap) bool {
	return b.rb.Equals(other.rb)
}

// IsEmpty reports whether the bitmap has no members.
func (b *Bitmap) IsEmpty() bool {
	return b.rb.IsEmpty()
}

// WriteTo serializes the bitmap. Roaring's own portable format is
// self-describing, satisfying the "partitions independently serialisable"
// requirement of spec.md §3 without a bespoke wire format.
func (b *Bitmap) WriteTo(w io.Writer) (int64, error) {
	return b.rb.WriteTo(w)
}

// ReadFrom deserializes a bitmap previously written by WriteTo.
func (b *Bitmap) ReadFrom(r io.Reader) (int64, error) {
	return b.rb.ReadFrom(r)
}

// MarshalBinary implements encoding.BinaryMarshaler so Bitmap can be a
// field of a gob-encoded Partition (see internal/table/persistence.go).
func (b *Bitmap) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (b *Bitmap) UnmarshalBinary(data []byte) error {
	b.rb = roaring.New()
	_, err := b.ReadFrom(bytes.NewReader(data))
	return err
}

// GobEncode implements gob.GobEncoder, deferring to roaring's own portable
// serialization rather than gob's reflection (rb is unexported, so default
// gob reflection would silently drop it).
func (b *Bitmap) GobEncode() ([]byte, error) {
	return b.MarshalBinary()
}

// GobDecode implements gob.GobDecoder.
func (b *Bitmap) GobDecode(data []byte) error {
	return b.UnmarshalBinary(data)
}
