package main

import (
	"flag"
	"io"
	"strconv"

	"github.com/tabbyio/tabby/containers"
	"github.com/tabbyio/tabby/xanerr"
)

// cmdCluster reads edge pairs from two selected columns and unions
// their endpoints via containers.UnionFindIndex, then either annotates
// every row with its component label or (with -largest) keeps only the
// rows belonging to the largest component. -sizes instead prints one
// component size per line. A union-find forest needs every edge before
// any component is final, so this buffers the whole input like agg
// does.
func cmdCluster(args []string) error {
	fs := flag.NewFlagSet("cluster", flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	from := fs.String("from", "", "selector naming the edge's source column")
	to := fs.String("to", "", "selector naming the edge's destination column")
	largest := fs.Bool("largest", false, "keep only rows in the largest component")
	sizes := fs.Bool("sizes", false, "print one component size per line instead of annotated rows")
	label := fs.String("label", "cluster", "name of the appended component-label column")
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
	fromIdx, err := resolveColumns(*from, header)
	if err != nil {
		return err
	}
	toIdx, err := resolveColumns(*to, header)
	if err != nil {
		return err
	}
	if len(fromIdx) != 1 || len(toIdx) != 1 {
		return xanerr.ParseError("-from and -to must each select exactly one column")
	}
	fromCol, toCol := fromIdx[0], toIdx[0]

	uf := containers.NewUnionFindIndex()
	var rows [][]string
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
		if fromCol < 0 || fromCol >= len(fields) || toCol < 0 || toCol >= len(fields) {
			return xanerr.EvaluationError("row %d: -from/-to column out of range for a %d-field row", rowIndex, len(fields))
		}
		uf.Union(fields[fromCol], fields[toCol])
		rows = append(rows, fields)
		rowIndex++
	}

	if *sizes {
		for _, size := range uf.Sizes() {
			if err := writer.WriteRow([]string{strconv.Itoa(size)}); err != nil {
				return xanerr.IoError("writing row: %s", err)
			}
		}
		return writer.Flush()
	}

	var largestLabels map[string]bool
	if *largest {
		largestLabels = make(map[string]bool)
		for _, l := range uf.LargestComponentLabels() {
			largestLabels[l] = true
		}
	}

	outHeader := names
	if names != nil {
		outHeader = append(append([]string(nil), names...), *label)
		if err := writer.WriteRow(outHeader); err != nil {
			return xanerr.IoError("writing header: %s", err)
		}
	}
	for _, fields := range rows {
		component, _ := uf.Find(fields[fromCol])
		if *largest && !largestLabels[component] {
			continue
		}
		out := append(append([]string(nil), fields...), component)
		if err := writer.WriteRow(out); err != nil {
			return xanerr.IoError("writing row: %s", err)
		}
	}
	return writer.Flush()
}
