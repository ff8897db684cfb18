package operator

import (
	"container/heap"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/nishad/silo/internal/bitmapx"
)

// ThresholdImpl selects which of the three equivalent threshold evaluation
// strategies of spec.md §4.C to run. All three must (and do) produce
// identical bitmaps for the same inputs — see internal/operator/threshold_test.go's
// cross-implementation property check.
type ThresholdImpl int

const (
	ThresholdCountingArray ThresholdImpl = iota
	ThresholdDP
	ThresholdHeapMerge
)

// Threshold returns the rows appearing in at least N (or, if MatchExactly,
// exactly N) of Positive ∪ complement(Negative), per spec.md §4.C.
type Threshold struct {
	Positive     []Operator
	Negative     []Operator
	N            int
	MatchExactly bool
	RowCountVal  uint64
	Impl         ThresholdImpl
}

func (t *Threshold) RowCount() uint64 { return t.RowCountVal }

// Negate has no cheaper algebraic form named in spec.md §4.C (unlike
// Intersection/Union/Selection/IsInCoveredRegion), so it wraps in
// Complement like the default case.
func (t *Threshold) Negate() Operator {
	return &Complement{Child: t, RowCountVal: t.RowCountVal}
}

func (t *Threshold) Evaluate() Result {
	children := t.effectiveChildren()
	switch t.Impl {
	case ThresholdDP:
		return Owned(thresholdDP(children, t.N, t.MatchExactly, t.RowCountVal))
	case ThresholdHeapMerge:
		return Owned(thresholdHeapMerge(children, t.N, t.MatchExactly, t.RowCountVal))
	default:
		return Owned(thresholdCountingArray(children, t.N, t.MatchExactly, t.RowCountVal))
	}
}

// effectiveChildren evaluates Positive as-is and Negative through its
// complement, producing the flat "positive ∪ complement(negative)" family
// every implementation below counts over.
func (t *Threshold) effectiveChildren() []*bitmapx.Bitmap {
	children := make([]*bitmapx.Bitmap, 0, len(t.Positive)+len(t.Negative))
	for _, p := range t.Positive {
		children = append(children, p.Evaluate().Bitmap())
	}
	for _, n := range t.Negative {
		b := n.Evaluate().Bitmap()
		children = append(children, b.Flip(0, t.RowCountVal))
	}
	return children
}

// thresholdCountingArray: implementation 1 of spec.md §4.C, a counting
// array over row ids.
func thresholdCountingArray(children []*bitmapx.Bitmap, n int, matchExactly bool, rowCount uint64) *bitmapx.Bitmap {
	counts := make([]int32, rowCount)
	for _, c := range children {
		it := c.Iterator()
		for it.HasNext() {
			counts[it.Next()]++
		}
	}
	result := bitmapx.New()
	for row, count := range counts {
		if matchExactly {
			if int(count) == n {
				result.Add(uint32(row))
			}
		} else if int(count) >= n {
			result.Add(uint32(row))
		}
	}
	return result
}

// thresholdDP: implementation 2 of spec.md §4.C, a DP across children with
// n+1 accumulator bitmaps. acc[k] saturates at "has reached at least k
// matches so far", so acc[n] after processing every child is exactly
// "at least n". Exact-n is then derived as atLeast(n) \ atLeast(n+1).
func thresholdDP(children []*bitmapx.Bitmap, n int, matchExactly bool, rowCount uint64) *bitmapx.Bitmap {
	atLeastN := atLeast(children, n, rowCount)
	if !matchExactly {
		return atLeastN
	}
	atLeastNPlus1 := atLeast(children, n+1, rowCount)
	atLeastN.AndNot(atLeastNPlus1)
	return atLeastN
}

func atLeast(children []*bitmapx.Bitmap, k int, rowCount uint64) *bitmapx.Bitmap {
	if k <= 0 {
		return bitmapx.NewRange(0, rowCount)
	}
	acc := make([]*bitmapx.Bitmap, k+1)
	acc[0] = bitmapx.NewRange(0, rowCount)
	for i := 1; i <= k; i++ {
		acc[i] = bitmapx.New()
	}
	for _, child := range children {
		for i := k; i >= 1; i-- {
			promoted := acc[i-1].Clone()
			promoted.And(child)
			acc[i].Or(promoted)
		}
	}
	return acc[k]
}

// thresholdHeapMerge: implementation 3 of spec.md §4.C, an n-way
// heap-merge over the sorted iteration of each child. Rows are visited in
// ascending order exactly once across all children combined; every run of
// equal row ids popped from the heap is one row's total match count.
func thresholdHeapMerge(children []*bitmapx.Bitmap, n int, matchExactly bool, rowCount uint64) *bitmapx.Bitmap {
	if n <= 0 {
		if !matchExactly {
			// Every row matches "at least 0 of the children".
			return bitmapx.NewRange(0, rowCount)
		}
		// "Exactly 0" is every row the heap-merge would never visit: rows
		// in none of the children. The merge below only ever sees rows
		// present in at least one child, so it can't produce this set on
		// its own; start from the full range and subtract every row seen.
		result := bitmapx.NewRange(0, rowCount)
		for _, c := range children {
			result.AndNot(c)
		}
		return result
	}

	h := &mergeHeap{}
	heap.Init(h)
	for _, c := range children {
		it := c.Iterator()
		if it.HasNext() {
			heap.Push(h, &mergeItem{value: it.Next(), it: it})
		}
	}

	result := bitmapx.New()
	for h.Len() > 0 {
		row := (*h)[0].value
		count := 0
		for h.Len() > 0 && (*h)[0].value == row {
			item := heap.Pop(h).(*mergeItem)
			count++
			if item.it.HasNext() {
				item.value = item.it.Next()
				heap.Push(h, item)
			}
		}
		if (matchExactly && count == n) || (!matchExactly && count >= n) {
			result.Add(row)
		}
	}
	return result
}

type mergeItem struct {
	value uint32
	it    roaring.IntPeekable
}

type mergeHeap []*mergeItem

func (h mergeHeap) Len() int            { return len(h) }
func (h mergeHeap) Less(i, j int) bool   { return h[i].value < h[j].value }
func (h mergeHeap) Swap(i, j int)        { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x interface{})  { *h = append(*h, x.(*mergeItem)) }
func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
