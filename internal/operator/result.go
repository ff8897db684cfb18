// Package operator implements Component G (spec.md §4.C): the lazy
// roaring-bitmap expression tree a compiled filter becomes. Every node
// implements Operator's Evaluate()/Negate() pair; Evaluate returns an
// OperatorResult rather than a raw bitmap so combinators can tell an owned
// (mutable) result from a borrowed (immutable) one and skip a clone when
// they are free to mutate in place.
package operator

import "github.com/nishad/silo/internal/bitmapx"

type resultKind int

const (
	ownedKind resultKind = iota
	borrowedKind
)

// Result is an OperatorResult: either an owned bitmap the combinator
// evaluating it may mutate in place, or a borrowed pointer into a stored
// index (e.g. IndexScan) that must be cloned before mutation.
type Result struct {
	kind   resultKind
	bitmap *bitmapx.Bitmap
}

// Owned wraps a freshly allocated bitmap the caller is free to mutate.
func Owned(b *bitmapx.Bitmap) Result { return Result{kind: ownedKind, bitmap: b} }

// Borrowed wraps a bitmap owned by a stored index; callers must Clone it
// before mutating.
func Borrowed(b *bitmapx.Bitmap) Result { return Result{kind: borrowedKind, bitmap: b} }

// Bitmap returns the underlying bitmap. Callers that only read (cardinality,
// iteration) may use it directly regardless of ownership; callers that
// mutate must check IsOwned first or call IntoOwned.
func (r Result) Bitmap() *bitmapx.Bitmap { return r.bitmap }

// IsOwned reports whether the caller may mutate Bitmap() in place.
func (r Result) IsOwned() bool { return r.kind == ownedKind }

// IntoOwned returns a bitmap the caller may freely mutate: the result
// itself if already owned, or a clone of a borrowed one.
func (r Result) IntoOwned() *bitmapx.Bitmap {
	if r.kind == ownedKind {
		return r.bitmap
	}
	return r.bitmap.Clone()
}

// Operator is the closed-set tree node of Component G. Every node's
// Evaluate() must return a subset of [0, RowCount()) (spec.md §8); Negate()
// returns the algebraic negation, using a cheaper form than wrapping in
// Complement whenever one exists (spec.md §4.C).
type Operator interface {
	Evaluate() Result
	Negate() Operator
	RowCount() uint64
}
