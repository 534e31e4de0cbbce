package main

import (
	"flag"

	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/record"
)

// filterProgram keeps a row only if expr evaluates truthy against it,
// per the expression grammar of spec.md §4.3 exposed on `filter`.
type filterProgram struct {
	header *record.Header
	expr   *moonblade.ConcreteExpr
	invert bool
}

func (p *filterProgram) ProcessRow(row record.Row) ([]string, error) {
	ctx := &moonblade.EvalContext{Header: p.header, Row: row}
	v, err := p.expr.Eval(ctx)
	if err != nil {
		return nil, err
	}
	keep := v.Truthy()
	if p.invert {
		keep = !keep
	}
	if !keep {
		return nil, nil
	}
	return row.Fields(), nil
}

func (p *filterProgram) Finish() ([][]string, error) { return nil, nil }

func cmdFilter(args []string) error {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	expr := fs.String("expr", "", "boolean expression; a row is kept when it evaluates truthy")
	invert := fs.Bool("invert", false, "keep rows where expr is falsey instead")
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

	program := &filterProgram{header: header, expr: concrete, invert: *invert}
	if f.parallel {
		return runParallelFilterMap(&f, reader, writer, names, program.ProcessRow)
	}
	return runPipeline(&f, reader, writer, names, program)
}
