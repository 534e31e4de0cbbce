package agg

import (
	"sync"

	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/record"
)

// Partitioning constants, generalized from the teacher's record-scoring
// fan-out (menu/fuzzy/rank.go's minRecordsPerPartition/maxNumPartitions):
// below minRowsPerShard rows, running single-threaded avoids goroutine
// overhead entirely; above maxShards, additional parallelism stops
// paying for itself against typical core counts.
const (
	minRowsPerShard = 4096
	maxShards       = 128
)

func numShards(numRows int) int {
	n := numRows / minRowsPerShard
	if n < 1 {
		return 1
	}
	if n > maxShards {
		return maxShards
	}
	return n
}

// RunSharded evaluates specs over rows in parallel shards, each
// building an independent Program from the same (header, groupKey,
// specs) plan, then reduces the shard states pairwise into one Program
// via Merge, per spec.md §4.4's "Parallel / partial merge": the result
// must equal the single-threaded run bit-for-bit for deterministic
// aggregators and within documented error bounds for approximate ones.
func RunSharded(header *record.Header, groupKey []*moonblade.ConcreteExpr, specs []Spec, rows []record.Row) (*Program, error) {
	shards := numShards(len(rows))
	if shards == 1 {
		return runSequential(header, groupKey, specs, rows)
	}

	rowsPerShard := len(rows)/shards + 1
	programs := make([]*Program, shards)
	errs := make([]error, shards)

	var wg sync.WaitGroup
	shardIdx := 0
	for start := 0; start < len(rows); start += rowsPerShard {
		end := start + rowsPerShard
		if end > len(rows) {
			end = len(rows)
		}

		wg.Add(1)
		go func(idx int, partition []record.Row) {
			defer wg.Done()
			p, err := runSequential(header, groupKey, specs, partition)
			programs[idx] = p
			errs[idx] = err
		}(shardIdx, rows[start:end])
		shardIdx++
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := programs[0]
	for _, p := range programs[1:] {
		if err := merged.Merge(p); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func runSequential(header *record.Header, groupKey []*moonblade.ConcreteExpr, specs []Spec, rows []record.Row) (*Program, error) {
	p, err := NewProgram(header, groupKey, specs)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		ctx := &moonblade.EvalContext{Header: header, Row: row}
		if err := p.Process(ctx); err != nil {
			return nil, err
		}
	}
	return p, nil
}
