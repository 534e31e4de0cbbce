// Command tabby is the CLI front end over the core packages: one
// sub-command per pipeline shape (select, filter, map, transform, agg,
// groupby, top, explode, implode, partition, dedup, cluster, frequency,
// sort), dispatched the way `go` or `git` dispatch theirs. The teacher
// itself is a single-command tool, so there's no sub-command dispatcher
// to port; this is a name -> handler-function table in which each
// handler builds its own stdlib flag.FlagSet, since no pack example
// reaches for a third-party CLI framework either.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/tabbyio/tabby/config"
	"github.com/tabbyio/tabby/pipeline"
	"github.com/tabbyio/tabby/record"
	"github.com/tabbyio/tabby/xanerr"
)

// ioFlags are the input/output/format flags every sub-command accepts.
type ioFlags struct {
	input       string
	output      string
	delimiter   string
	quote       string
	noHeaders   bool
	noConfig    bool
	parallel    bool
	preserve    bool
	errorPolicy string
	width       int
}

func (f *ioFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.input, "input", "-", "input file path, or - for stdin")
	fs.StringVar(&f.output, "output", "-", "output file path, or - for stdout")
	fs.StringVar(&f.delimiter, "delimiter", "", "override the configured field delimiter")
	fs.StringVar(&f.quote, "quote", "", "override the configured quote byte")
	fs.BoolVar(&f.noHeaders, "no-headers", false, "treat the first record as data, not a header")
	fs.BoolVar(&f.noConfig, "no-config", false, "ignore the user config file and use defaults")
	fs.BoolVar(&f.parallel, "parallel", false, "evaluate records across a worker pool")
	fs.BoolVar(&f.preserve, "preserve-order", false, "reassemble parallel output in original row order")
	fs.StringVar(&f.errorPolicy, "on-error", "panic", "panic|skip|log|report")
	fs.IntVar(&f.width, "width", 0, "column count for -no-headers mode, used to bounds-check selectors/indices (0 = a generous default)")
}

func (f *ioFlags) errPolicy() (pipeline.ErrorPolicy, error) {
	switch f.errorPolicy {
	case "panic":
		return pipeline.ErrorPolicyPanic, nil
	case "skip":
		return pipeline.ErrorPolicySkip, nil
	case "log":
		return pipeline.ErrorPolicyLog, nil
	case "report":
		return pipeline.ErrorPolicyReport, nil
	default:
		return 0, xanerr.ParseError("unknown -on-error policy %q", f.errorPolicy)
	}
}

// resolvedConfig loads the user config (unless -no-config) and applies
// the per-path rule overlay plus any CLI overrides, per spec.md §4.5
// step 3 "build derived state."
func (f *ioFlags) resolvedConfig() (config.Config, error) {
	uc, err := config.LoadOrCreateUserConfig(f.noConfig)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "loading config")
	}

	cfg := uc.RuleSet.ConfigForPath(f.input)

	var overlay config.PartialConfig
	if f.delimiter != "" {
		overlay.Delimiter = &f.delimiter
	}
	if f.quote != "" {
		overlay.Quote = &f.quote
	}
	if f.noHeaders {
		noHeaders := true
		overlay.NoHeaders = &noHeaders
	}
	if err := overlay.Validate(); err != nil {
		return config.Config{}, err
	}
	cfg.Apply(overlay)
	return cfg, nil
}

func (f *ioFlags) openInput() (io.ReadCloser, error) {
	if f.input == "-" || f.input == "" {
		return io.NopCloser(os.Stdin), nil
	}
	rc, err := os.Open(f.input)
	if err != nil {
		return nil, xanerr.IoError("opening input %q: %s", f.input, err)
	}
	return rc, nil
}

func (f *ioFlags) openOutput() (io.WriteCloser, error) {
	if f.output == "-" || f.output == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	wc, err := os.Create(f.output)
	if err != nil {
		return nil, xanerr.IoError("creating output %q: %s", f.output, err)
	}
	return wc, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// newReaderWriter opens the configured input/output and wires up a
// record.Reader/record.Writer pair using the resolved delimiter/quote.
func newReaderWriter(f *ioFlags, cfg config.Config) (*record.Reader, *record.Writer, func(), error) {
	in, err := f.openInput()
	if err != nil {
		return nil, nil, nil, err
	}
	out, err := f.openOutput()
	if err != nil {
		in.Close()
		return nil, nil, nil, err
	}

	delim := cfg.Delimiter[0]
	quote := cfg.Quote[0]
	reader := record.NewReader(in, 64*1024, record.WithDelimiter(delim), record.WithQuote(quote))
	writer := record.NewWriter(out, record.WithWriterDelimiter(delim), record.WithWriterQuote(quote))

	closeAll := func() {
		in.Close()
		out.Close()
	}
	return reader, writer, closeAll, nil
}

// readHeader reads the input header up front (unless -no-headers), so
// sub-commands can build header-dependent state (concretised
// expressions, resolved selectors, group-key exprs) before handing
// the reader off to a Runner. Passing synthetic names lets no-header
// mode still build a *record.Header (column_0, column_1, ...), the
// same synthetic-name convention xan's own CLI uses.
func readHeader(f *ioFlags, reader *record.Reader) (*record.Header, []string, error) {
	if f.noHeaders {
		return syntheticHeader(f.width), nil, nil
	}
	h, err := reader.ReadHeader()
	if err != nil {
		return nil, nil, xanerr.IoError("reading header: %s", err)
	}
	return h, h.Names(), nil
}

// defaultSyntheticWidth bounds -no-headers selectors/indices when
// -width wasn't given. Generous rather than exact, since the real row
// width isn't known until the first data row is read, by which point
// the Program (and any selector/expression it concretised against the
// header) already has to exist.
const defaultSyntheticWidth = 4096

// syntheticHeader builds placeholder column names (column_0,
// column_1, ...) for -no-headers mode, so selectors/expressions still
// have a schema to resolve against by absolute index.
func syntheticHeader(width int) *record.Header {
	if width <= 0 {
		width = defaultSyntheticWidth
	}
	names := make([]string, width)
	for i := range names {
		names[i] = fmt.Sprintf("column_%d", i)
	}
	return record.NewHeader(names)
}

// runPipeline drives a Runner with the -on-error flag's policy and a
// SIGINT abort handler wired in, per spec.md §5's cancellation model,
// and returns Run's error to the caller (exitWithError does the
// reporting and the non-zero exit).
func runPipeline(f *ioFlags, reader *record.Reader, writer *record.Writer, header []string, program pipeline.Program) error {
	policy, err := f.errPolicy()
	if err != nil {
		return err
	}

	abort, stop := pipeline.WithSignalAbort()
	defer stop()

	runner := &pipeline.Runner{
		Reader:      reader,
		Writer:      writer,
		Program:     program,
		ErrorPolicy: policy,
		NoHeaders:   f.noHeaders,
		Header:      header,
		Abort:       abort,
	}
	return runner.Run()
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	if xanerr.Is(err, xanerr.KindUserAbort) {
		os.Exit(130)
	}
	os.Exit(1)
}

func init() {
	log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	if os.Getenv("TABBY_LOG") == "" {
		log.SetOutput(io.Discard)
	}
}
