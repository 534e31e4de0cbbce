package main

import (
	"flag"
	"io"
	"sort"

	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/xanerr"
)

type sortedRow struct {
	key    moonblade.Value
	fields []string
}

func compareValues(a, b moonblade.Value) int {
	if a.IsNumeric() && b.IsNumeric() {
		an, aerr := a.ToNumber()
		bn, berr := b.ToNumber()
		if aerr == nil && berr == nil {
			return an.Cmp(bn)
		}
	}
	as, bs := a.Serialize(), b.Serialize()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// cmdSort reads the whole input, evaluates -expr for every row, and
// writes rows back out ordered by that value, buffering the entire
// input since a full sort (unlike `top`) needs every row's relative
// order resolved at once.
func cmdSort(args []string) error {
	fs := flag.NewFlagSet("sort", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	expr := fs.String("expr", "", "expression to sort rows by")
	reverse := fs.Bool("reverse", false, "sort descending instead of ascending")
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
	concrete, err := concretiseExpr(*expr, header)
	if err != nil {
		return err
	}

	var rows []sortedRow
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
		rows = append(rows, sortedRow{key: v, fields: row.Fields()})
		rowIndex++
	}

	sort.SliceStable(rows, func(i, j int) bool {
		c := compareValues(rows[i].key, rows[j].key)
		if *reverse {
			return c > 0
		}
		return c < 0
	})

	if names != nil {
		if err := writer.WriteRow(names); err != nil {
			return xanerr.IoError("writing header: %s", err)
		}
	}
	for _, r := range rows {
		if err := writer.WriteRow(r.fields); err != nil {
			return xanerr.IoError("writing row: %s", err)
		}
	}
	return writer.Flush()
}
