package main

import (
	"flag"

	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/record"
)

// mapProgram appends one computed column to every row.
type mapProgram struct {
	header *record.Header
	expr   *moonblade.ConcreteExpr
	name   string
}

func (p *mapProgram) TransformHeader(header []string) []string {
	return append(append([]string(nil), header...), p.name)
}

func (p *mapProgram) ProcessRow(row record.Row) ([]string, error) {
	ctx := &moonblade.EvalContext{Header: p.header, Row: row}
	v, err := p.expr.Eval(ctx)
	if err != nil {
		return nil, err
	}
	return append(row.Fields(), v.Serialize()), nil
}

func (p *mapProgram) Finish() ([][]string, error) { return nil, nil }

func cmdMap(args []string) error {
	fs := flag.NewFlagSet("map", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	expr := fs.String("expr", "", "expression to evaluate for each row")
	name := fs.String("name", "result", "name of the appended column")
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

	program := &mapProgram{header: header, expr: concrete, name: *name}
	if f.parallel {
		var outHeader []string
		if names != nil {
			outHeader = program.TransformHeader(names)
		}
		return runParallelFilterMap(&f, reader, writer, outHeader, program.ProcessRow)
	}
	return runPipeline(&f, reader, writer, names, program)
}
