package record

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// state is the record splitter's per-byte state, mirroring the
// Unquoted/Quoted/Quote automaton ported from
// _examples/original_source/src/splitter.rs's RecordSplitter, generalized
// from "find the record boundary" to "find the record boundary and every
// field separator within it".
type state int

const (
	stateUnquoted state = iota
	stateQuoted
	stateQuote
)

// ParseError reports malformed quoting encountered with StrictQuoting
// enabled.
type ParseError struct {
	Offset int64
	Msg    string
}

func (e *ParseError) Error() string {
	return errors.Errorf("parse error at byte %d: %s", e.Offset, e.Msg).Error()
}

// Reader streams delimited records from a byte source, byte-by-byte,
// carrying state across each refill of the underlying buffered reader the
// way the teacher's syntax/parser/tokenizer.go carries DFA state across
// incremental tokenize calls. Field bytes are appended into a per-record
// scratch buffer, with escaped quotes collapsed, so callers read Row.Bytes
// plus Row.Offsets rather than a []string.
type Reader struct {
	src    *bufio.Reader
	delim  byte
	quote  byte
	strict bool

	state     state
	bytesRead int64

	// scratch is reused across ReadRow calls to avoid per-row allocation;
	// callers that need to retain a Row past the next ReadRow call must
	// copy Bytes themselves.
	scratch []byte
	offsets []int

	atEOF bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithDelimiter sets the field separator byte (default ',').
func WithDelimiter(b byte) Option {
	return func(r *Reader) { r.delim = b }
}

// WithQuote sets the quote byte (default '"').
func WithQuote(b byte) Option {
	return func(r *Reader) { r.quote = b }
}

// WithStrictQuoting makes a stray mid-field quote a fatal ParseError
// instead of the default lenient behavior, which treats it as ordinary
// field content (matching every reference case in the original splitter
// and xan's documented permissive CSV dialect).
func WithStrictQuoting(strict bool) Option {
	return func(r *Reader) { r.strict = strict }
}

// NewReader wraps src, buffering it at the given capacity.
func NewReader(src io.Reader, bufferCapacity int, opts ...Option) *Reader {
	r := &Reader{
		src:   bufio.NewReaderSize(src, bufferCapacity),
		delim: ',',
		quote: '"',
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadRow parses and returns the next record, or io.EOF once the stream is
// exhausted. The returned Row's Bytes/Offsets slices are only valid until
// the next call to ReadRow.
func (r *Reader) ReadRow() (Row, error) {
	if r.atEOF {
		return Row{}, io.EOF
	}

	r.scratch = r.scratch[:0]
	r.offsets = r.offsets[:0]
	r.state = stateUnquoted

	sawAnyByte := false

	for {
		b, err := r.src.ReadByte()
		if err != nil {
			if err != io.EOF {
				return Row{}, err
			}
			r.atEOF = true
			if !sawAnyByte {
				return Row{}, io.EOF
			}
			return Row{Bytes: r.scratch, Offsets: r.offsets}, nil
		}
		r.bytesRead++

		switch r.state {
		case stateUnquoted:
			switch {
			case b == '\n':
				if !sawAnyByte {
					// Blank line before any field content: skip it,
					// matching the splitter's "skipping empty lines".
					continue
				}
				return Row{Bytes: r.scratch, Offsets: r.offsets}, nil
			case b == '\r':
				// Swallowed; a following '\n' ends the record normally.
				continue
			case b == r.delim:
				sawAnyByte = true
				r.offsets = append(r.offsets, len(r.scratch))
				r.scratch = append(r.scratch, r.delim)
				continue
			case b == r.quote:
				sawAnyByte = true
				r.state = stateQuoted
				continue
			default:
				sawAnyByte = true
				r.scratch = append(r.scratch, b)
			}
		case stateQuoted:
			sawAnyByte = true
			if b == r.quote {
				r.state = stateQuote
			} else {
				r.scratch = append(r.scratch, b)
			}
		case stateQuote:
			sawAnyByte = true
			switch {
			case b == r.quote:
				// Escaped quote: emit one literal quote, stay quoted.
				r.scratch = append(r.scratch, r.quote)
				r.state = stateQuoted
			case b == r.delim:
				r.offsets = append(r.offsets, len(r.scratch))
				r.scratch = append(r.scratch, r.delim)
				r.state = stateUnquoted
			case b == '\n':
				r.state = stateUnquoted
				return Row{Bytes: r.scratch, Offsets: r.offsets}, nil
			case b == '\r':
				r.state = stateUnquoted
				continue
			default:
				if r.strict {
					return Row{}, &ParseError{Offset: r.bytesRead, Msg: "quote followed by non-quote, non-delimiter byte"}
				}
				// Lenient: treat as ordinary content, matching the
				// original's Quote-state fallback to Unquoted.
				r.scratch = append(r.scratch, b)
				r.state = stateUnquoted
			}
		}
	}
}

// ReadHeader reads the first row and builds a Header from its fields.
func (r *Reader) ReadHeader() (*Header, error) {
	row, err := r.ReadRow()
	if err != nil {
		return nil, err
	}
	return NewHeader(row.Fields()), nil
}
