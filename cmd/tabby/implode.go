package main

import (
	"flag"
	"io"
	"strings"

	"github.com/tabbyio/tabby/xanerr"
)

// cmdImplode is explode's inverse: rows sharing the same -by key
// collapse into one row, with -column's values joined by -sep. Like
// agg/groupby it needs every row for a key before it can emit, so it
// groups the whole input in memory rather than streaming row-for-row.
func cmdImplode(args []string) error {
	fs := flag.NewFlagSet("implode", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	by := fs.String("by", "", "selector naming the columns identifying a group")
	column := fs.String("column", "", "selector naming the single column to join")
	sep := fs.String("sep", ",", "separator joining -column's values within a group")
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
	byIndices, err := resolveColumns(*by, header)
	if err != nil {
		return err
	}
	if len(byIndices) == 0 {
		return xanerr.ParseError("implode requires -by")
	}
	colIndices, err := resolveColumns(*column, header)
	if err != nil {
		return err
	}
	if len(colIndices) != 1 {
		return xanerr.ParseError("-column must select exactly one column, selected %d", len(colIndices))
	}
	col := colIndices[0]

	type group struct {
		fields []string
		parts  []string
	}
	var order []string
	groups := make(map[string]*group)

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
			return xanerr.EvaluationError("implode column index %d out of range for a %d-field row", col, len(fields))
		}
		key := groupKeyString(fields, byIndices)
		g, ok := groups[key]
		if !ok {
			g = &group{fields: append([]string(nil), fields...)}
			groups[key] = g
			order = append(order, key)
		}
		g.parts = append(g.parts, fields[col])
		rowIndex++
	}

	if names != nil {
		if err := writer.WriteRow(names); err != nil {
			return xanerr.IoError("writing header: %s", err)
		}
	}
	for _, key := range order {
		g := groups[key]
		out := append([]string(nil), g.fields...)
		out[col] = strings.Join(g.parts, *sep)
		if err := writer.WriteRow(out); err != nil {
			return xanerr.IoError("writing row: %s", err)
		}
	}
	return writer.Flush()
}

// groupKeyString joins the selected fields with a separator that
// cannot appear in a field value (a NUL byte), so distinct field
// combinations never collide into the same group key string.
func groupKeyString(fields []string, indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		if idx >= 0 && idx < len(fields) {
			parts[i] = fields[idx]
		}
	}
	return strings.Join(parts, "\x00")
}
