package pipeline

import (
	"runtime"
	"sync"

	"github.com/tabbyio/tabby/record"
)

// Partitioning constants for non-aggregating parallel mode, matching
// agg.minRowsPerShard/maxShards in spirit (same below-threshold
// single-goroutine shortcut, same generalization of the teacher's
// menu/fuzzy/rank.go numPartitions helper), but using a worker-pool
// shape instead of disjoint static partitions since row evaluation
// cost can vary per record and a shared work queue balances that.
const (
	minRowsPerWorker = 1024
	maxWorkers       = 0 // 0 means runtime.GOMAXPROCS(0)
)

func numWorkers(numRows int) int {
	if numRows < minRowsPerWorker {
		return 1
	}
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return n
}

// RowEval evaluates one program against row, returning the output
// fields (nil to suppress output, e.g. filter rejecting the row).
type RowEval func(row record.Row) ([]string, error)

type indexedResult struct {
	index  int
	fields []string
	err    error
}

// RunParallel evaluates eval against every row using a worker pool,
// per spec.md §4.5's parallel mode for non-aggregating pipelines
// (`map`, `transform`, `filter`). When preserveOrder is true the
// returned slice is indexed exactly like rows; otherwise rows are
// returned in completion order, per spec.md §5's "output order...not
// guaranteed stable unless the runtime is configured to re-assemble by
// original row index." eval must be safe to call concurrently: every
// moonblade.ConcreteExpr.Eval call only reads its (already-concretised)
// expression tree and its own EvalContext, so the same compiled
// program can run unsynchronized across workers.
func RunParallel(rows []record.Row, eval RowEval, preserveOrder bool) ([][]string, error) {
	workers := numWorkers(len(rows))
	if workers == 1 {
		return runParallelSequential(rows, eval)
	}

	jobs := make(chan int, len(rows))
	for i := range rows {
		jobs <- i
	}
	close(jobs)

	results := make(chan indexedResult, len(rows))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fields, err := eval(rows[i])
				results <- indexedResult{index: i, fields: fields, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	if preserveOrder {
		out := make([][]string, len(rows))
		present := make([]bool, len(rows))
		for r := range results {
			if r.err != nil {
				return nil, r.err
			}
			out[r.index] = r.fields
			present[r.index] = true
		}
		filtered := make([][]string, 0, len(rows))
		for i, ok := range present {
			if ok && out[i] != nil {
				filtered = append(filtered, out[i])
			}
		}
		return filtered, nil
	}

	var out [][]string
	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		if r.fields != nil {
			out = append(out, r.fields)
		}
	}
	return out, nil
}

func runParallelSequential(rows []record.Row, eval RowEval) ([][]string, error) {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		fields, err := eval(row)
		if err != nil {
			return nil, err
		}
		if fields != nil {
			out = append(out, fields)
		}
	}
	return out, nil
}
