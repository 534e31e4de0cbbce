package main

import (
	"flag"
	"io"
	"strings"

	"github.com/tabbyio/tabby/xanerr"
)

// cmdExplode splits one column's delimiter-joined value into
// several output rows, one per piece, copying the rest of the row
// unchanged onto each. One input row can therefore produce any number
// of output rows, which is why explode drives its own read/write loop
// instead of going through pipeline.Runner's one-row-in-one-row-out
// Program contract.
func cmdExplode(args []string) error {
	fs := flag.NewFlagSet("explode", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	column := fs.String("column", "", "selector naming the single column to split")
	sep := fs.String("sep", ",", "separator splitting the column's value")
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

	header, names, err := readHeader(&f, reader)
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

	if names != nil {
		if err := writer.WriteRow(names); err != nil {
			return xanerr.IoError("writing header: %s", err)
		}
	}

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
			return xanerr.EvaluationError("explode column index %d out of range for a %d-field row", col, len(fields))
		}
		pieces := strings.Split(fields[col], *sep)
		for _, piece := range pieces {
			out := append([]string(nil), fields...)
			out[col] = piece
			if err := writer.WriteRow(out); err != nil {
				return xanerr.IoError("writing row: %s", err)
			}
		}
		rowIndex++
	}

	return writer.Flush()
}
