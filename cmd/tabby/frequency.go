package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/tabbyio/tabby/containers"
	"github.com/tabbyio/tabby/xanerr"
)

// cmdFrequency counts distinct values of one column via
// containers.Counter, with -percentage/-ratio readouts ported from the
// original implementation's Count::ratio/Count::percentage, and
// -top to cap output to the k most frequent values via Counter's own
// FixedReverseHeapMapWithTies-backed MostCommon. Needs the full column
// tallied before any readout makes sense, so it buffers nothing beyond
// the counter itself.
func cmdFrequency(args []string) error {
	fs := flag.NewFlagSet("frequency", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	column := fs.String("column", "", "selector naming the single column to tally")
	top := fs.Int("top", 0, "keep only the k most frequent values (0 = all)")
	percentage := fs.Bool("percentage", false, "append a percentage-of-total column")
	ratio := fs.Bool("ratio", false, "append a ratio-of-total column")
	fs.Parse(args)

	cfg, err := f.resolvedConfig()
	if err != nil {
		return err
	}
	reader, writer, closeAll, err := newReaderWriter(&f, cfg)
	if err != nil {
		return err
	}
	defer closeAll()

	header, _, err := readHeader(&f, reader)
	if err != nil {
		return err
	}
	indices, err := resolveColumns(*column, header)
	if err != nil {
		return err
	}
	if len(indices) != 1 {
		return xanerr.ParseError("-column must select exactly one column, selected %d", len(indices))
	}
	col := indices[0]

	counter := containers.NewCounter()
	var total uint64
	var rowIndex int64
	for {
		row, err := reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xanerr.IoError("reading row %d: %s", rowIndex, err)
		}
		fields := row.Fields()
		if col < 0 || col >= len(fields) {
			return xanerr.EvaluationError("row %d: -column index out of range for a %d-field row", rowIndex, len(fields))
		}
		counter.Add(fields[col])
		total++
		rowIndex++
	}

	outHeader := []string{"value", "count"}
	if *percentage {
		outHeader = append(outHeader, "percentage")
	}
	if *ratio {
		outHeader = append(outHeader, "ratio")
	}
	if err := writer.WriteRow(outHeader); err != nil {
		return xanerr.IoError("writing header: %s", err)
	}

	var entries []containers.KeyedItem[uint64, string]
	if *top > 0 {
		entries = counter.MostCommon(*top)
	} else {
		counter.ForEach(func(key string, count uint64) {
			entries = append(entries, containers.KeyedItem[uint64, string]{Key: count, Value: key})
		})
	}

	for _, e := range entries {
		row := []string{e.Value, fmt.Sprintf("%d", e.Key)}
		if *percentage {
			row = append(row, fmt.Sprintf("%.4f", float64(e.Key)/float64(total)*100))
		}
		if *ratio {
			row = append(row, fmt.Sprintf("%.6f", float64(e.Key)/float64(total)))
		}
		if err := writer.WriteRow(row); err != nil {
			return xanerr.IoError("writing row: %s", err)
		}
	}
	return writer.Flush()
}
