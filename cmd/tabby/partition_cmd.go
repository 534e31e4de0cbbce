package main

import (
	"flag"
	"io"

	"github.com/tabbyio/tabby/pipeline"
	"github.com/tabbyio/tabby/record"
	"github.com/tabbyio/tabby/xanerr"
)

// cmdPartition dispatches every row to one output file per -by key
// under -output-dir, via pipeline.Partitioner's LRU-capped open-writer
// cache. Unlike every other sub-command, -output doesn't apply: the
// output IS the set of files the partitioner creates.
func cmdPartition(args []string) error {
	fs := flag.NewFlagSet("partition", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	by := fs.String("by", "", "selector naming the columns forming the partition key")
	outDir := fs.String("output-dir", ".", "directory to write one file per partition key into")
	maxOpen := fs.Int("max-open", 64, "maximum number of output file handles held open at once")
	fs.Parse(args)

	if *by == "" {
		return xanerr.ParseError("partition requires -by")
	}

	cfg, err := f.resolvedConfig()
	if err != nil {
		return err
	}
	in, err := f.openInput()
	if err != nil {
		return err
	}
	defer in.Close()

	delim := cfg.Delimiter[0]
	quote := cfg.Quote[0]
	reader := record.NewReader(in, 64*1024, record.WithDelimiter(delim), record.WithQuote(quote))

	header, names, err := readHeader(&f, reader)
	if err != nil {
		return err
	}
	keyIndices, err := resolveColumns(*by, header)
	if err != nil {
		return err
	}

	partitioner := pipeline.NewPartitioner(*outDir, *maxOpen, names)

	abort, stop := pipeline.WithSignalAbort()
	defer stop()

	var rowIndex int64
	for {
		if abort() {
			break
		}
		row, err := reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xanerr.IoError("reading row %d: %s", rowIndex, err)
		}
		fields := row.Fields()
		key := groupKeyString(fields, keyIndices)
		if err := partitioner.Write(key, fields); err != nil {
			return err
		}
		rowIndex++
	}
	return partitioner.Close()
}
