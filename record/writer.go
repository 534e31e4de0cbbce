package record

import (
	"bufio"
	"bytes"
	"io"
)

// Writer serializes rows of string fields back to delimited text,
// mirroring Reader's automaton: a field is quoted only when it
// contains the delimiter, the quote byte, or a newline, and an
// embedded quote is escaped by doubling it, exactly undoing the
// quote-collapsing Reader performs on the way in.
type Writer struct {
	dst   *bufio.Writer
	delim byte
	quote byte
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithWriterDelimiter sets the field separator byte (default ',').
func WithWriterDelimiter(b byte) WriterOption {
	return func(w *Writer) { w.delim = b }
}

// WithWriterQuote sets the quote byte (default '"').
func WithWriterQuote(b byte) WriterOption {
	return func(w *Writer) { w.quote = b }
}

// NewWriter wraps dst, buffering output.
func NewWriter(dst io.Writer, opts ...WriterOption) *Writer {
	w := &Writer{
		dst:   bufio.NewWriter(dst),
		delim: ',',
		quote: '"',
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteRow writes one record as delimiter-separated, minimally-quoted
// fields followed by a newline.
func (w *Writer) WriteRow(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.dst.WriteByte(w.delim); err != nil {
				return err
			}
		}
		if err := w.writeField(field); err != nil {
			return err
		}
	}
	return w.dst.WriteByte('\n')
}

func (w *Writer) writeField(field string) error {
	if !w.needsQuoting(field) {
		_, err := w.dst.WriteString(field)
		return err
	}

	if err := w.dst.WriteByte(w.quote); err != nil {
		return err
	}
	start := 0
	for i := 0; i < len(field); i++ {
		if field[i] == w.quote {
			if _, err := w.dst.WriteString(field[start : i+1]); err != nil {
				return err
			}
			if err := w.dst.WriteByte(w.quote); err != nil {
				return err
			}
			start = i + 1
		}
	}
	if _, err := w.dst.WriteString(field[start:]); err != nil {
		return err
	}
	return w.dst.WriteByte(w.quote)
}

func (w *Writer) needsQuoting(field string) bool {
	return bytes.IndexByte([]byte(field), w.delim) >= 0 ||
		bytes.IndexByte([]byte(field), w.quote) >= 0 ||
		bytes.IndexByte([]byte(field), '\n') >= 0 ||
		bytes.IndexByte([]byte(field), '\r') >= 0
}

// Flush flushes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.dst.Flush()
}
