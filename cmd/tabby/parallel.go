package main

import (
	"io"

	"github.com/tabbyio/tabby/pipeline"
	"github.com/tabbyio/tabby/record"
	"github.com/tabbyio/tabby/xanerr"
)

// runParallelFilterMap drives the -parallel path for non-aggregating
// programs (filter/map/transform): the whole input is buffered, then
// pipeline.RunParallel fans it across a worker pool, per spec.md
// §4.5's parallel mode. This trades the Runner's streaming memory
// profile for throughput, same tradeoff spec.md §5 describes for
// parallel non-aggregating pipelines.
func runParallelFilterMap(f *ioFlags, reader *record.Reader, writer *record.Writer, header []string, eval pipeline.RowEval) error {
	if header != nil {
		if err := writer.WriteRow(header); err != nil {
			return xanerr.IoError("writing header: %s", err)
		}
	}

	var rows []record.Row
	for {
		row, err := reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xanerr.IoError("reading row: %s", err)
		}
		rows = append(rows, row)
	}

	out, err := pipeline.RunParallel(rows, eval, f.preserve)
	if err != nil {
		return err
	}
	for _, fields := range out {
		if err := writer.WriteRow(fields); err != nil {
			return xanerr.IoError("writing row: %s", err)
		}
	}
	return writer.Flush()
}
