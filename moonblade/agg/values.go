package agg

import "strings"

// Values is an append-only list of strings for later joining, grounded
// on original_source/src/moonblade/agg/aggregators/values.rs.
type Values struct {
	values []string
}

// NewValues constructs an empty Values.
func NewValues() *Values {
	return &Values{}
}

// Add appends one value.
func (v *Values) Add(s string) {
	v.values = append(v.values, s)
}

// Join concatenates every recorded value, in insertion order, with
// separator.
func (v *Values) Join(separator string) string {
	return strings.Join(v.values, separator)
}

// Len returns the number of recorded values.
func (v *Values) Len() int { return len(v.values) }

// All returns every recorded value, in insertion order.
func (v *Values) All() []string { return v.values }

// Merge appends other's values after v's.
func (v *Values) Merge(other *Values) {
	v.values = append(v.values, other.values...)
}

// Clear resets v to empty.
func (v *Values) Clear() {
	v.values = nil
}
