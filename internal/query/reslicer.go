package query

import (
	"time"

	"github.com/nishad/silo/internal/action"
)

// BatchReslicer implements spec.md §5's backpressure contract: "resize
// incoming batches to a target size, delay between emissions to enforce a
// minimum inter-batch interval" — modeled on the teacher's backgroundSync
// ticker loop (internal/search/sync.go's time.NewTicker polling pattern),
// adapted from a periodic poll into a pace-limited emitter.
type BatchReslicer struct {
	BatchSize   int
	MinInterval time.Duration
}

// NewBatchReslicer builds a BatchReslicer from a query config's batch size
// (entries per batch) and minimum inter-batch interval in milliseconds,
// per config.QueryConfig's StreamBatchSize/StreamBatchMinMs.
func NewBatchReslicer(batchSize, minIntervalMs int) *BatchReslicer {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &BatchReslicer{BatchSize: batchSize, MinInterval: time.Duration(minIntervalMs) * time.Millisecond}
}

// Batches slices entries into BatchSize-sized chunks, sending each on the
// returned channel. Because the channel is unbuffered, a send blocks until
// the downstream consumer reads — the "bounded buffer" of spec.md §5 — and
// after each send the reslicer additionally sleeps any remainder of
// MinInterval so a fast consumer still can't pull batches faster than the
// configured target rate.
func (r *BatchReslicer) Batches(entries []action.Entry) <-chan []action.Entry {
	out := make(chan []action.Entry)
	go func() {
		defer close(out)
		for start := 0; start < len(entries); start += r.BatchSize {
			began := time.Now()
			end := start + r.BatchSize
			if end > len(entries) {
				end = len(entries)
			}
			out <- entries[start:end]
			if remaining := r.MinInterval - time.Since(began); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}()
	return out
}
