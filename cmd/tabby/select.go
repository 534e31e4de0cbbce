package main

import (
	"flag"

	"github.com/tabbyio/tabby/record"
)

// selectProgram projects a fixed set of column indices out of every
// row, per spec.md §4.2's selection DSL.
type selectProgram struct {
	indices []int
}

func (p *selectProgram) TransformHeader(header []string) []string {
	return projectFields(header, p.indices)
}

func (p *selectProgram) ProcessRow(row record.Row) ([]string, error) {
	return projectFields(row.Fields(), p.indices), nil
}

func (p *selectProgram) Finish() ([][]string, error) { return nil, nil }

func projectFields(fields []string, indices []int) []string {
	out := make([]string, len(indices))
	for i, idx := range indices {
		if idx >= 0 && idx < len(fields) {
			out[i] = fields[idx]
		}
	}
	return out
}

func cmdSelect(args []string) error {
	fs := flag.NewFlagSet("select", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	selector := fs.String("select", "", "selector string naming the columns to keep, in order")
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
	indices, err := resolveColumns(*selector, header)
	if err != nil {
		return err
	}

	return runPipeline(&f, reader, writer, names, &selectProgram{indices: indices})
}
