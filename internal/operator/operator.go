package operator

import "github.com/nishad/silo/internal/bitmapx"

// Empty is the operator ∅: no row matches, per spec.md §4.C.
type Empty struct {
	RowCountVal uint64
}

func (e *Empty) RowCount() uint64  { return e.RowCountVal }
func (e *Empty) Evaluate() Result  { return Owned(bitmapx.New()) }
func (e *Empty) Negate() Operator  { return &Full{RowCountVal: e.RowCountVal} }

// Full is the operator [0, row_count): every row matches.
type Full struct {
	RowCountVal uint64
}

func (f *Full) RowCount() uint64 { return f.RowCountVal }
func (f *Full) Evaluate() Result { return Owned(bitmapx.NewRange(0, f.RowCountVal)) }
func (f *Full) Negate() Operator { return &Empty{RowCountVal: f.RowCountVal} }

// IndexScan returns a stored bitmap unchanged, borrowed rather than copied
// — an equality lookup against an INDEXED_STRING column's per-value
// bitmap, or a literal insertion lookup, compiles to this.
type IndexScan struct {
	Bitmap      *bitmapx.Bitmap
	RowCountVal uint64
}

func (s *IndexScan) RowCount() uint64 { return s.RowCountVal }
func (s *IndexScan) Evaluate() Result { return Borrowed(s.Bitmap) }
func (s *IndexScan) Negate() Operator { return &Complement{Child: s, RowCountVal: s.RowCountVal} }

// BitmapProducer defers to an arbitrary function computing a fresh bitmap
// on every Evaluate() call; used for any predicate that isn't one of the
// other named operator kinds (e.g. an insertion regex scan).
type BitmapProducer struct {
	Fn          func() *bitmapx.Bitmap
	RowCountVal uint64
}

func (b *BitmapProducer) RowCount() uint64 { return b.RowCountVal }
func (b *BitmapProducer) Evaluate() Result { return Owned(b.Fn()) }
func (b *BitmapProducer) Negate() Operator { return &Complement{Child: b, RowCountVal: b.RowCountVal} }

// Complement is [0, row_count) \ child. Negating a Complement returns its
// child directly rather than wrapping again (spec.md §4.C,
// "Complement(x)→x").
type Complement struct {
	Child       Operator
	RowCountVal uint64
}

func (c *Complement) RowCount() uint64 { return c.RowCountVal }
func (c *Complement) Evaluate() Result {
	b := c.Child.Evaluate().Bitmap()
	return Owned(b.Flip(0, c.RowCountVal))
}
func (c *Complement) Negate() Operator { return c.Child }
