package main

import (
	"flag"

	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/record"
	"github.com/tabbyio/tabby/xanerr"
)

// transformProgram replaces one existing column's value with expr's
// result, evaluated against the row's original (pre-transform)
// values, so expr can still reference the column being replaced.
type transformProgram struct {
	header *record.Header
	expr   *moonblade.ConcreteExpr
	column int
}

func (p *transformProgram) ProcessRow(row record.Row) ([]string, error) {
	ctx := &moonblade.EvalContext{Header: p.header, Row: row}
	v, err := p.expr.Eval(ctx)
	if err != nil {
		return nil, err
	}
	fields := row.Fields()
	if p.column < 0 || p.column >= len(fields) {
		return nil, xanerr.EvaluationError("transform column index %d out of range for a %d-field row", p.column, len(fields))
	}
	fields[p.column] = v.Serialize()
	return fields, nil
}

func (p *transformProgram) Finish() ([][]string, error) { return nil, nil }

func cmdTransform(args []string) error {
	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	expr := fs.String("expr", "", "expression whose result replaces -column's value")
	column := fs.String("column", "", "selector naming the single column to replace")
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
	indices, err := resolveColumns(*column, header)
	if err != nil {
		return err
	}
	if len(indices) != 1 {
		return xanerr.ParseError("-column must select exactly one column, selected %d", len(indices))
	}

	program := &transformProgram{header: header, expr: concrete, column: indices[0]}
	if f.parallel {
		return runParallelFilterMap(&f, reader, writer, names, program.ProcessRow)
	}
	return runPipeline(&f, reader, writer, names, program)
}
