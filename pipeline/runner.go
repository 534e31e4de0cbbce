// Package pipeline drives the read-process-write loop shared by every
// tabby sub-command, generalized from the teacher's app.Editor event
// loop (poll an event source, apply a mutator, redraw) to stream
// processing (read a record, run a program against it, write the
// result), plus the parallel, partitioned, and sorted-streaming
// variants spec.md §4.5 and §5 describe.
package pipeline

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/tabbyio/tabby/record"
	"github.com/tabbyio/tabby/xanerr"
)

// ErrorPolicy governs what happens when Program.Process returns an
// EvaluationError for one record, per spec.md §7's propagation policy
// table.
type ErrorPolicy int

const (
	// ErrorPolicyPanic aborts the whole run on the first evaluation
	// error. Default, matching spec.md §7.
	ErrorPolicyPanic ErrorPolicy = iota
	// ErrorPolicySkip drops the offending record and continues.
	ErrorPolicySkip
	// ErrorPolicyLog writes the error to stderr and emits the offending
	// record with an empty cell appended in place of the derived value.
	ErrorPolicyLog
	// ErrorPolicyReport appends the error message as an extra column
	// on the offending record.
	ErrorPolicyReport
)

// Program is the per-record transform a Runner drives: given a parsed
// row, it returns the fields to write (nil to suppress output for
// this record, e.g. a `filter` program that rejected it) or an error.
// Implementations close over whatever compiled expressions, selection,
// or aggregator state backs one sub-command.
type Program interface {
	// ProcessRow returns the output fields for row, or nil fields to
	// suppress output, per spec.md §4.5's "iterate records, invoking
	// the per-record program."
	ProcessRow(row record.Row) (fields []string, err error)
	// Finish is called once the input is exhausted (or aborted), to
	// let windowed/groupby programs drain accumulated state. It
	// returns every remaining row to emit.
	Finish() ([][]string, error)
}

// Runner owns the read-process-write loop for one sub-command
// invocation: reader and writer are already configured with the
// resolved delimiter/quote (config.Config), Program already holds
// whatever compiled state the sub-command needs.
type Runner struct {
	Reader      *record.Reader
	Writer      *record.Writer
	Program     Program
	ErrorPolicy ErrorPolicy
	NoHeaders   bool

	// Header, when set, is used instead of calling Reader.ReadHeader:
	// most sub-commands need the header's column names before they can
	// build their Program (to concretise expressions, resolve a
	// selector, ...), so they call Reader.ReadHeader themselves first
	// and hand the result to Runner here rather than have Runner read
	// it a second time.
	Header []string

	// Abort, when non-nil, is polled once per record; a true read
	// ends the loop at the next record boundary, per spec.md §5's
	// "SIGINT handler sets an abort flag observed by the reader
	// loop." See Runner.WithSignalAbort in signal.go for the usual
	// way to populate it.
	Abort func() bool
}

// HeaderTransformer is implemented by programs whose output schema
// differs from their input schema (select projects a subset, map
// appends a column, explode/implode change row shape, agg/groupby
// replace the header with the spec names entirely). Runner checks for
// it after reading the input header and before writing the output
// one.
type HeaderTransformer interface {
	TransformHeader(header []string) []string
}

// Run drives the loop: read a header (unless NoHeaders), then read
// and process records until EOF or abort, then flush Program's
// trailing state and the writer.
func (r *Runner) Run() error {
	header, err := r.readHeader()
	if err != nil {
		return err
	}
	if header != nil {
		if t, ok := r.Program.(HeaderTransformer); ok {
			header = t.TransformHeader(header)
		}
		if header != nil {
			if err := r.Writer.WriteRow(header); err != nil {
				return xanerr.IoError("writing header: %s", err)
			}
		}
	}

	var aborted bool
	var rowIndex int64
	for {
		if r.Abort != nil && r.Abort() {
			log.Printf("Abort observed, stopping read loop at row %d\n", rowIndex)
			aborted = true
			break
		}

		row, err := r.Reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xanerr.IoError("reading row %d: %s", rowIndex, err)
		}

		if err := r.processRow(row, rowIndex); err != nil {
			return err
		}
		rowIndex++
	}

	tail, err := r.Program.Finish()
	if err != nil {
		return errors.Wrap(err, "finishing program")
	}
	for _, fields := range tail {
		if err := r.Writer.WriteRow(fields); err != nil {
			return xanerr.IoError("writing row: %s", err)
		}
	}

	if err := r.Writer.Flush(); err != nil {
		return xanerr.IoError("flushing writer: %s", err)
	}
	if aborted {
		return xanerr.UserAbort()
	}
	return nil
}

func (r *Runner) readHeader() ([]string, error) {
	if r.NoHeaders {
		return nil, nil
	}
	if r.Header != nil {
		return r.Header, nil
	}
	h, err := r.Reader.ReadHeader()
	if err != nil {
		return nil, xanerr.IoError("reading header: %s", err)
	}
	return h.Names(), nil
}

// processRow applies ErrorPolicy to one record's evaluation error.
func (r *Runner) processRow(row record.Row, rowIndex int64) error {
	fields, err := r.Program.ProcessRow(row)
	if err == nil {
		if fields == nil {
			return nil
		}
		if werr := r.Writer.WriteRow(fields); werr != nil {
			return xanerr.IoError("writing row %d: %s", rowIndex, werr)
		}
		return nil
	}

	switch r.ErrorPolicy {
	case ErrorPolicySkip:
		log.Printf("Skipping row %d: %v\n", rowIndex, err)
		return nil
	case ErrorPolicyLog:
		fmt.Fprintf(os.Stderr, "Error evaluating row %d: %v\n", rowIndex, err)
		logged := append(row.Fields(), "")
		if werr := r.Writer.WriteRow(logged); werr != nil {
			return xanerr.IoError("writing row %d: %s", rowIndex, werr)
		}
		return nil
	case ErrorPolicyReport:
		reported := append(row.Fields(), err.Error())
		if werr := r.Writer.WriteRow(reported); werr != nil {
			return xanerr.IoError("writing row %d: %s", rowIndex, werr)
		}
		return nil
	default: // ErrorPolicyPanic
		return errors.Wrapf(err, "row %d", rowIndex)
	}
}
