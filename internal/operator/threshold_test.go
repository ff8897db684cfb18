package operator

import (
	"math/rand"
	"testing"

	"github.com/nishad/silo/internal/bitmapx"
)

func randomBitmap(rowCount uint64, density float64, seed int64) *bitmapx.Bitmap {
	r := rand.New(rand.NewSource(seed))
	b := bitmapx.New()
	for row := uint64(0); row < rowCount; row++ {
		if r.Float64() < density {
			b.Add(uint32(row))
		}
	}
	return b
}

// TestThresholdImplementationsAgree is the cross-implementation property
// check of spec.md §8: counting-array, DP and heap-merge must produce
// identical bitmaps for the same (positive, negative, n, matchExactly).
func TestThresholdImplementationsAgree(t *testing.T) {
	const rowCount = 200

	children := make([]*bitmapx.Bitmap, 6)
	for i := range children {
		children[i] = randomBitmap(rowCount, 0.3, int64(i)+1)
	}

	for n := 0; n <= len(children)+1; n++ {
		for _, matchExactly := range []bool{false, true} {
			want := thresholdCountingArray(children, n, matchExactly, rowCount)
			gotDP := thresholdDP(children, n, matchExactly, rowCount)
			gotHeap := thresholdHeapMerge(children, n, matchExactly, rowCount)

			if !want.Equals(gotDP) {
				t.Errorf("n=%d matchExactly=%v: DP = %v, want %v", n, matchExactly, gotDP.ToArray(), want.ToArray())
			}
			if !want.Equals(gotHeap) {
				t.Errorf("n=%d matchExactly=%v: heap-merge = %v, want %v", n, matchExactly, gotHeap.ToArray(), want.ToArray())
			}
		}
	}
}

func TestThresholdOperatorEvaluateSelectsImpl(t *testing.T) {
	positive := []Operator{
		&IndexScan{Bitmap: bm(0, 1, 2), RowCountVal: 5},
		&IndexScan{Bitmap: bm(1, 2, 3), RowCountVal: 5},
		&IndexScan{Bitmap: bm(2, 3, 4), RowCountVal: 5},
	}

	for _, impl := range []ThresholdImpl{ThresholdCountingArray, ThresholdDP, ThresholdHeapMerge} {
		th := &Threshold{Positive: positive, N: 2, RowCountVal: 5, Impl: impl}
		assertRows(t, th.Evaluate().Bitmap(), 1, 2, 3)
	}
}

func TestThresholdMatchExactly(t *testing.T) {
	positive := []Operator{
		&IndexScan{Bitmap: bm(0, 1), RowCountVal: 5},
		&IndexScan{Bitmap: bm(1, 2), RowCountVal: 5},
		&IndexScan{Bitmap: bm(2, 3), RowCountVal: 5},
	}
	th := &Threshold{Positive: positive, N: 2, MatchExactly: true, RowCountVal: 5}
	assertRows(t, th.Evaluate().Bitmap(), 1, 2)
}

func TestThresholdWithNegative(t *testing.T) {
	// positive∪complement(negative) over rowCount=5: positive gives {0,1},
	// negative {0} complements to {1,2,3,4}; at-least-2 of that family is
	// {1}.
	positive := []Operator{&IndexScan{Bitmap: bm(0, 1), RowCountVal: 5}}
	negative := []Operator{&IndexScan{Bitmap: bm(0), RowCountVal: 5}}
	th := &Threshold{Positive: positive, Negative: negative, N: 2, RowCountVal: 5}
	assertRows(t, th.Evaluate().Bitmap(), 1)
}

func TestThresholdNegateWrapsComplement(t *testing.T) {
	th := &Threshold{Positive: []Operator{&IndexScan{Bitmap: bm(0), RowCountVal: 3}}, N: 1, RowCountVal: 3}
	if _, ok := th.Negate().(*Complement); !ok {
		t.Errorf("Threshold.Negate() = %T, want *Complement", th.Negate())
	}
}
