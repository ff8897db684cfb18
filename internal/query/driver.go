package query

import (
	"runtime"
	"sync"

	"github.com/nishad/silo/internal/action"
	"github.com/nishad/silo/internal/bitmapx"
	"github.com/nishad/silo/internal/errors"
	"github.com/nishad/silo/internal/filter"
	"github.com/nishad/silo/internal/sequencestore"
	"github.com/nishad/silo/internal/table"
)

const opRun errors.Op = "query.Driver.Run"

// Driver runs Requests against a loaded Table, per spec.md §5's
// "partitioned parallel executor": filter compilation and evaluation is
// data-parallel with no cross-partition communication, bounded by a
// fixed-size worker pool (one goroutine per partition, capped by
// WorkerPoolSize concurrently in flight), the same goroutine-plus-mutex
// fan-out shape as the teacher's QueryEngine.Search
// (internal/query/engine.go in cmd/srake).
type Driver struct {
	// WorkerPoolSize bounds how many partitions compile/evaluate at once.
	// 0 means runtime.NumCPU().
	WorkerPoolSize int
}

// Run compiles and evaluates req.FilterExpression against every partition
// of t concurrently (spec.md §5 step 3: "for each partition in parallel:
// filter.compile(table, partition, EXACT) → operator; operator.evaluate()
// → bitmap"), then executes req.Action over the resulting per-partition
// bitmaps (step 4).
func (d *Driver) Run(t *table.Table, req *Request) (*action.QueryResult, error) {
	bitmaps, err := d.evaluate(t, req.FilterExpression)
	if err != nil {
		return nil, err
	}
	return req.Action.Execute(t, bitmaps)
}

func (d *Driver) evaluate(t *table.Table, node *filter.Node) ([]*bitmapx.Bitmap, error) {
	n := len(t.Partitions)
	bitmaps := make([]*bitmapx.Bitmap, n)
	if n == 0 {
		return bitmaps, nil
	}

	workers := d.WorkerPoolSize
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	sem := make(chan struct{}, workers)

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			op, err := filter.Compile(t, t.Partitions[i], sequencestore.Exact, node)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			bitmaps[i] = op.Evaluate().IntoOwned()
		}()
	}
	wg.Wait()

	if firstErr != nil {
		// firstErr already carries its own Op/Kind from filter.Compile
		// (almost always KindBadRequest); wrapping again here would
		// flatten it to KindUnknown and hide the 400-vs-500 distinction
		// from the CLI/transport layer.
		return nil, firstErr
	}
	return bitmaps, nil
}
