// Package selection implements the column-selector DSL: parsing a
// selector string and resolving it against a header schema into an
// ordered, possibly duplicated, possibly inverted list of field indices.
package selection

import (
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/pkg/errors"

	"github.com/tabbyio/tabby/record"
)

// Error reports a failure to resolve a selector against a header: an
// unknown name, an out-of-bounds index, or a malformed occurrence index.
type Error struct {
	Selector string
	Msg      string
}

func (e *Error) Error() string {
	return errors.Errorf("selection error in %q: %s", e.Selector, e.Msg).Error()
}

// atomKind distinguishes the three atom productions in the grammar.
type atomKind int

const (
	atomAll atomKind = iota
	atomName
	atomIndex
)

type atom struct {
	kind          atomKind
	name          string
	isGlob        bool
	occurrence    int
	hasOccurrence bool
	index         int
}

type item struct {
	negate   bool
	from     atom
	to       *atom
	isSingle bool
}

// Selection is a parsed, unresolved selector spec.
type Selection struct {
	raw   string
	items []item
}

// Parse parses a selector string per the grammar:
//
//	selection := item ("," item)*
//	item      := "!"? range
//	range     := atom (":" atom)?
//	atom      := "*" | literal ("[" signed_int "]")? | signed_int
//	literal   := bare_identifier | '"' ... '"'
func Parse(spec string) (*Selection, error) {
	parts, err := splitTopLevel(spec)
	if err != nil {
		return nil, &Error{Selector: spec, Msg: err.Error()}
	}

	items := make([]item, 0, len(parts))
	for _, p := range parts {
		it, err := parseItem(strings.TrimSpace(p))
		if err != nil {
			return nil, &Error{Selector: spec, Msg: err.Error()}
		}
		items = append(items, it)
	}
	return &Selection{raw: spec, items: items}, nil
}

// Resolve expands the selection against header into an ordered list of
// field indices, preserving duplicates and the "!" inversion semantics.
func (s *Selection) Resolve(header *record.Header) ([]int, error) {
	var out []int
	for _, it := range s.items {
		indices, err := resolveItem(it, header)
		if err != nil {
			return nil, &Error{Selector: s.raw, Msg: err.Error()}
		}
		out = append(out, indices...)
	}
	return out, nil
}

func resolveItem(it item, header *record.Header) ([]int, error) {
	var indices []int

	if it.isSingle {
		idx, err := resolveAtomMulti(it.from, header)
		if err != nil {
			return nil, err
		}
		indices = idx
	} else {
		start, end, err := resolveRangeEndpoints(it.from, it.to, header)
		if err != nil {
			return nil, err
		}
		indices = expandRange(start, end)
	}

	if it.negate {
		return invert(indices, header.Len()), nil
	}
	return indices, nil
}

func resolveRangeEndpoints(from atom, to *atom, header *record.Header) (int, int, error) {
	start := 0
	var err error
	if !isEmptyAtom(from) {
		start, err = resolveAtomSingle(from, header)
		if err != nil {
			return 0, 0, err
		}
	}

	end := header.Len() - 1
	if to != nil && !isEmptyAtom(*to) {
		end, err = resolveAtomSingle(*to, header)
		if err != nil {
			return 0, 0, err
		}
	}
	return start, end, nil
}

func isEmptyAtom(a atom) bool {
	return a.kind == atomName && a.name == "" && !a.hasOccurrence
}

func expandRange(start, end int) []int {
	if start <= end {
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out
	}
	out := make([]int, 0, start-end+1)
	for i := start; i >= end; i-- {
		out = append(out, i)
	}
	return out
}

func invert(selected []int, width int) []int {
	excluded := make(map[int]bool, len(selected))
	for _, i := range selected {
		excluded[i] = true
	}
	var out []int
	for i := 0; i < width; i++ {
		if !excluded[i] {
			out = append(out, i)
		}
	}
	return out
}

// resolveAtomSingle resolves an atom that must yield exactly one index
// (range endpoints, and names without glob characters).
func resolveAtomSingle(a atom, header *record.Header) (int, error) {
	switch a.kind {
	case atomIndex:
		return normalizeIndex(a.index, header.Len())
	case atomName:
		if a.isGlob {
			return 0, errors.New("glob pattern not valid as a range endpoint")
		}
		if a.hasOccurrence {
			idx, ok := header.Occurrence(a.name, a.occurrence)
			if !ok {
				return 0, errors.Errorf("unknown column %q at occurrence %d", a.name, a.occurrence)
			}
			return idx, nil
		}
		idx, ok := header.IndexOf(a.name)
		if !ok {
			return 0, errors.Errorf("unknown column %q", a.name)
		}
		return idx, nil
	default:
		return 0, errors.New("'*' is not valid as a range endpoint")
	}
}

// resolveAtomMulti resolves a standalone atom, which may expand to many
// indices ("*" or a glob).
func resolveAtomMulti(a atom, header *record.Header) ([]int, error) {
	if a.kind == atomAll {
		out := make([]int, header.Len())
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	if a.kind == atomName && a.isGlob {
		var out []int
		for i, name := range header.Names() {
			if globMatch(a.name, name) {
				out = append(out, i)
			}
		}
		if len(out) == 0 {
			return nil, errors.Errorf("glob %q matched no columns", a.name)
		}
		return out, nil
	}
	idx, err := resolveAtomSingle(a, header)
	if err != nil {
		return nil, err
	}
	return []int{idx}, nil
}

func normalizeIndex(i, width int) (int, error) {
	n := i
	if n < 0 {
		n = width + n
	}
	if n < 0 || n >= width {
		return 0, errors.Errorf("index %d out of bounds for %d columns", i, width)
	}
	return n, nil
}

// parseItem parses one comma-delimited item: an optional "!" prefix
// followed by a range.
func parseItem(s string) (item, error) {
	negate := false
	if strings.HasPrefix(s, "!") {
		negate = true
		s = s[1:]
	}

	leftStr, rightStr, hasColon, err := splitRange(s)
	if err != nil {
		return item{}, err
	}

	if !hasColon {
		from, err := parseAtom(leftStr)
		if err != nil {
			return item{}, err
		}
		return item{negate: negate, from: from, isSingle: true}, nil
	}

	from, err := parseAtom(leftStr)
	if err != nil {
		return item{}, err
	}
	to, err := parseAtom(rightStr)
	if err != nil {
		return item{}, err
	}
	return item{negate: negate, from: from, to: &to}, nil
}

// splitRange finds the top-level ':' separating a range's two endpoints,
// ignoring any ':' inside a quoted literal or an occurrence bracket.
func splitRange(s string) (left, right string, hasColon bool, err error) {
	depth := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
			continue
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == ':' && depth == 0:
			return s[:i], s[i+1:], true, nil
		}
	}
	if inQuote {
		return "", "", false, errors.New("unterminated quote")
	}
	return s, "", false, nil
}

// parseAtom parses a single atom: "*", a signed integer, or a literal
// with an optional "[occurrence]" suffix. An empty string parses as the
// sentinel "empty" atom used to mean "start of record" / "end of record"
// in a range with an omitted endpoint.
func parseAtom(s string) (atom, error) {
	if s == "" {
		return atom{kind: atomName, name: ""}, nil
	}
	if s == "*" {
		return atom{kind: atomAll}, nil
	}

	if n, ok := parseSignedInt(s); ok {
		return atom{kind: atomIndex, index: n}, nil
	}

	name := s
	occurrence := 0
	hasOccurrence := false
	if idx := strings.LastIndexByte(s, '['); idx != -1 && strings.HasSuffix(s, "]") {
		occStr := s[idx+1 : len(s)-1]
		n, ok := parseSignedInt(occStr)
		if !ok {
			return atom{}, errors.Errorf("non-integer occurrence index %q", occStr)
		}
		name = s[:idx]
		occurrence = n
		hasOccurrence = true
	}

	name, err := unquoteLiteral(name)
	if err != nil {
		return atom{}, err
	}

	return atom{
		kind:          atomName,
		name:          name,
		isGlob:        strings.ContainsRune(name, '*'),
		occurrence:    occurrence,
		hasOccurrence: hasOccurrence,
	}, nil
}

func parseSignedInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// unquoteLiteral strips surrounding quotes and resolves escapes using the
// same quoted-token unescaping the teacher applies to shell input
// (shellcmd.go's shlex.Split), so a name like `"vec, weird"` round-trips
// through the same rules a shell-quoted argument would.
func unquoteLiteral(s string) (string, error) {
	if !strings.HasPrefix(s, `"`) {
		return s, nil
	}
	parts, err := shlex.Split(s)
	if err != nil {
		return "", errors.Wrapf(err, "invalid quoted literal %q", s)
	}
	if len(parts) != 1 {
		return "", errors.Errorf("invalid quoted literal %q", s)
	}
	return parts[0], nil
}

// splitTopLevel splits a selector spec on top-level commas, skipping
// commas nested inside quotes or occurrence brackets.
func splitTopLevel(s string) ([]string, error) {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
			continue
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	parts = append(parts, s[start:])
	return parts, nil
}
