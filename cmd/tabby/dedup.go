package main

import (
	"flag"

	"github.com/tabbyio/tabby/record"
)

// dedupProgram keeps the first row seen for each -by key (or each
// distinct whole row, when -by is empty) and drops every later row
// sharing that key.
type dedupProgram struct {
	keyIndices []int
	seen       map[string]bool
}

func (p *dedupProgram) ProcessRow(row record.Row) ([]string, error) {
	fields := row.Fields()
	key := groupKeyString(fields, p.keyIndices)
	if p.seen[key] {
		return nil, nil
	}
	p.seen[key] = true
	return fields, nil
}

func (p *dedupProgram) Finish() ([][]string, error) { return nil, nil }

func cmdDedup(args []string) error {
	fs := flag.NewFlagSet("dedup", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	by := fs.String("by", "", "selector naming the columns identifying a duplicate (default: the whole row)")
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

	var keyIndices []int
	if *by != "" {
		keyIndices, err = resolveColumns(*by, header)
		if err != nil {
			return err
		}
	} else {
		keyIndices = make([]int, header.Len())
		for i := range keyIndices {
			keyIndices[i] = i
		}
	}

	program := &dedupProgram{keyIndices: keyIndices, seen: make(map[string]bool)}
	return runPipeline(&f, reader, writer, names, program)
}
