package main

import (
	"flag"
	"io"

	"github.com/tabbyio/tabby/containers"
	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/xanerr"
)

// cmdTop keeps the k rows with the largest -expr value, via
// containers.FixedReverseHeapMap's O(log k) bounded retention, per
// spec.md §5's "Fixed reverse heap: bounded by k" memory budget.
// Buffers nothing beyond the heap itself, but (unlike most other
// sub-commands) can't emit output until the whole input is read, so
// it doesn't go through pipeline.Runner's row-at-a-time loop.
func cmdTop(args []string) error {
	fs := flag.NewFlagSet("top", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	expr := fs.String("expr", "", "numeric expression to rank rows by")
	k := fs.Int("k", 10, "number of rows to keep")
	reverse := fs.Bool("reverse", false, "keep the k smallest rows instead of the largest")
	fs.Parse(args)

	if *k < 0 {
		return xanerr.ParseError("-k must be non-negative, got %d", *k)
	}

	cfg, err := f.resolvedConfig()
	if err != nil {
		return err
	}
	reader, writer, closeAll, err := newReaderWriter(&f, cfg)
	if err != nil {
		return err
	}
	defer closeAll()

	header, names, err := readHeader(&f, reader)
	if err != nil {
		return err
	}
	concrete, err := concretiseExpr(*expr, header)
	if err != nil {
		return err
	}

	heap := containers.NewFixedReverseHeapMap[float64, []string](*k)
	var rowIndex int64
	for {
		row, err := reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xanerr.IoError("reading row %d: %s", rowIndex, err)
		}
		ctx := &moonblade.EvalContext{Header: header, Row: row, RecordIndex: rowIndex}
		v, err := concrete.Eval(ctx)
		if err != nil {
			return err
		}
		n, err := v.ToNumber()
		if err != nil {
			return xanerr.EvaluationError("row %d: -expr must be numeric: %s", rowIndex, err)
		}
		key := n.Float()
		if *reverse {
			key = -key
		}
		fields := row.Fields()
		heap.PushWith(key, func() []string { return fields })
		rowIndex++
	}

	if names != nil {
		if err := writer.WriteRow(names); err != nil {
			return xanerr.IoError("writing header: %s", err)
		}
	}
	for _, item := range heap.IntoSortedSlice() {
		if err := writer.WriteRow(item.Value); err != nil {
			return xanerr.IoError("writing row: %s", err)
		}
	}
	return writer.Flush()
}
