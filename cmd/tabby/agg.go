package main

import (
	"flag"
	"strings"

	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/moonblade/agg"
	"github.com/tabbyio/tabby/pipeline"
	"github.com/tabbyio/tabby/record"
	"github.com/tabbyio/tabby/xanerr"
)

// aggRowToFields serializes one agg.Row (group key values followed by
// spec readouts) into output cells, in the order TransformHeader
// names them.
func aggRowToFields(r agg.Row) []string {
	out := make([]string, 0, len(r.GroupKey)+len(r.Values))
	for _, v := range r.GroupKey {
		out = append(out, v.Serialize())
	}
	for _, v := range r.Values {
		out = append(out, v.Serialize())
	}
	return out
}

func aggOutputHeader(groupKeyNames []string, specs []agg.Spec) []string {
	out := make([]string, 0, len(groupKeyNames)+len(specs))
	out = append(out, groupKeyNames...)
	for _, s := range specs {
		out = append(out, s.Name)
	}
	return out
}

// fullAggProgram runs a full group table in memory (agg.Program),
// buffering every group until Finish, per spec.md §4.4.
type fullAggProgram struct {
	header  *record.Header
	prog    *agg.Program
	outHead []string
}

func (p *fullAggProgram) TransformHeader(header []string) []string { return p.outHead }

func (p *fullAggProgram) ProcessRow(row record.Row) ([]string, error) {
	ctx := &moonblade.EvalContext{Header: p.header, Row: row}
	if err := p.prog.Process(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func (p *fullAggProgram) Finish() ([][]string, error) {
	rows, err := p.prog.Readout()
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = aggRowToFields(r)
	}
	return out, nil
}

// sortedAggProgram flushes one group's row the moment the (presorted)
// group key changes, per spec.md §4.5's sorted streaming mode.
type sortedAggProgram struct {
	header  *record.Header
	sorted  *pipeline.SortedAggregator
	outHead []string
}

func (p *sortedAggProgram) TransformHeader(header []string) []string { return p.outHead }

func (p *sortedAggProgram) ProcessRow(row record.Row) ([]string, error) {
	ctx := &moonblade.EvalContext{Header: p.header, Row: row}
	flushed, err := p.sorted.Process(ctx)
	if err != nil {
		return nil, err
	}
	if len(flushed) == 0 {
		return nil, nil
	}
	return aggRowToFields(flushed[0]), nil
}

func (p *sortedAggProgram) Finish() ([][]string, error) {
	rows, err := p.sorted.Finish()
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = aggRowToFields(r)
	}
	return out, nil
}

// runAggCommand backs both `agg` (no group key) and `groupby` (with
// one), since moonblade/agg.Program already treats an empty groupKey
// as a single global group.
func runAggCommand(args []string, requireGroupKey bool, name string) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var f ioFlags
	f.register(fs)
	by := fs.String("by", "", "comma-separated column names to group by")
	sorted := fs.Bool("sorted", false, "input is already sorted by -by; stream with O(1) memory per spec.md §4.5")
	var specStrs stringSliceFlag
	fs.Var(&specStrs, "agg", "aggregation spec such as 'sum(amount) as total'; repeatable")
	fs.Parse(args)

	if requireGroupKey && *by == "" {
		return xanerr.ParseError("%s requires -by", name)
	}
	if len(specStrs) == 0 {
		return xanerr.ParseError("%s requires at least one -agg spec", name)
	}

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

	groupKey, err := parseGroupKey(*by, header)
	if err != nil {
		return err
	}
	specs := make([]agg.Spec, len(specStrs))
	for i, s := range specStrs {
		spec, err := parseAggSpec(s, header)
		if err != nil {
			return err
		}
		specs[i] = spec
	}

	var groupKeyNames []string
	if *by != "" {
		for _, n := range strings.Split(*by, ",") {
			groupKeyNames = append(groupKeyNames, strings.TrimSpace(n))
		}
	}
	outHead := aggOutputHeader(groupKeyNames, specs)

	if *sorted {
		program := &sortedAggProgram{
			header:  header,
			sorted:  pipeline.NewSortedAggregator(header, groupKey, specs),
			outHead: outHead,
		}
		return runPipeline(&f, reader, writer, names, program)
	}

	prog, err := agg.NewProgram(header, groupKey, specs)
	if err != nil {
		return err
	}
	program := &fullAggProgram{header: header, prog: prog, outHead: outHead}
	return runPipeline(&f, reader, writer, names, program)
}

func cmdAgg(args []string) error {
	return runAggCommand(args, false, "agg")
}

func cmdGroupby(args []string) error {
	return runAggCommand(args, true, "groupby")
}

// stringSliceFlag implements flag.Value for a repeatable string flag.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string { return strings.Join(*s, ",") }
func (s *stringSliceFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}
