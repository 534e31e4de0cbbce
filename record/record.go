// Package record implements the delimited-byte record model: a row of
// opaque byte fields plus the header schema used to name them.
package record

import "github.com/pkg/errors"

// Row is a single parsed record: the raw bytes of the line together with
// the byte offsets of its field separators, so that individual fields can
// be sliced out of Bytes without copying. Grounded on the "(record_bytes,
// field_offsets) pairs" contract and on the teacher's own tagged
// byte-slice-plus-offsets style in input/vm/compiler.go.
type Row struct {
	Bytes   []byte
	Offsets []int
}

// Len returns the number of fields in the row.
func (r Row) Len() int {
	return len(r.Offsets) + 1
}

// Field returns the i-th field's raw bytes, or (nil, false) if i is out of
// range.
func (r Row) Field(i int) ([]byte, bool) {
	if i < 0 || i >= r.Len() {
		return nil, false
	}
	start := 0
	if i > 0 {
		start = r.Offsets[i-1] + 1
	}
	end := len(r.Bytes)
	if i < len(r.Offsets) {
		end = r.Offsets[i]
	}
	return r.Bytes[start:end], true
}

// Fields materializes every field as a string slice. Intended for tests
// and for call sites that need owned copies rather than borrowed slices.
func (r Row) Fields() []string {
	out := make([]string, r.Len())
	for i := range out {
		b, _ := r.Field(i)
		out[i] = string(b)
	}
	return out
}

// Header maps column names to zero-based indices. Names need not be
// unique; Occurrences tracks every index sharing a name, in order, so the
// selection DSL's name[occurrence] syntax can disambiguate.
type Header struct {
	index       map[string]int
	occurrences map[string][]int
	names       []string
}

// NewHeader builds a header schema from an ordered list of column names,
// as produced by reading the first row of an input (unless no-header mode
// is active, in which case synthetic names are supplied by the caller).
func NewHeader(names []string) *Header {
	h := &Header{
		index:       make(map[string]int, len(names)),
		occurrences: make(map[string][]int, len(names)),
		names:       append([]string(nil), names...),
	}
	for i, name := range names {
		if _, ok := h.index[name]; !ok {
			h.index[name] = i
		}
		h.occurrences[name] = append(h.occurrences[name], i)
	}
	return h
}

// Len returns the number of columns in the header.
func (h *Header) Len() int {
	return len(h.names)
}

// Name returns the column name at index i.
func (h *Header) Name(i int) (string, bool) {
	if i < 0 || i >= len(h.names) {
		return "", false
	}
	return h.names[i], true
}

// IndexOf returns the first index bearing name.
func (h *Header) IndexOf(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// Occurrence returns the index of the n-th (zero-based) column named
// name, supporting negative n to count from the last occurrence.
func (h *Header) Occurrence(name string, n int) (int, bool) {
	occs, ok := h.occurrences[name]
	if !ok || len(occs) == 0 {
		return 0, false
	}
	if n < 0 {
		n = len(occs) + n
	}
	if n < 0 || n >= len(occs) {
		return 0, false
	}
	return occs[n], true
}

// Names returns the full ordered list of column names.
func (h *Header) Names() []string {
	return append([]string(nil), h.names...)
}

// ErrUnknownColumn is returned when a header lookup fails to resolve a
// name to an index.
var ErrUnknownColumn = errors.New("unknown column")
