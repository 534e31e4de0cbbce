package agg

import "github.com/tabbyio/tabby/containers"

// Frequencies is a dense per-group frequency table, grounded on
// original_source/src/moonblade/agg/aggregators/frequencies.rs; the
// counting and tie-break machinery it describes already lives in
// containers.Counter, reused here rather than duplicated.
type Frequencies struct {
	counter *containers.Counter
}

// NewFrequencies constructs an empty Frequencies.
func NewFrequencies() *Frequencies {
	return &Frequencies{counter: containers.NewCounter()}
}

// Add records one observation of value.
func (f *Frequencies) Add(value string) {
	f.counter.Add(value)
}

// AddCount records count observations of value at once.
func (f *Frequencies) AddCount(value string, count uint64) {
	f.counter.AddCount(value, count)
}

// Mode returns the single most frequent value, ties broken toward the
// lexicographically greatest key.
func (f *Frequencies) Mode() (string, bool) {
	return f.counter.Mode()
}

// Modes returns every value tied for the highest count, sorted
// ascending.
func (f *Frequencies) Modes() []string {
	return f.counter.Modes()
}

// MostCommon returns the k most frequent values, ties broken
// alphabetically ascending.
func (f *Frequencies) MostCommon(k int) []containers.KeyedItem[uint64, string] {
	return f.counter.MostCommon(k)
}

// Cardinality returns the number of distinct values seen.
func (f *Frequencies) Cardinality() int {
	return f.counter.Cardinality()
}

// Join concatenates every distinct value, sorted ascending, with
// separator.
func (f *Frequencies) Join(separator string) string {
	return f.counter.Join(separator)
}

// Merge folds other's counts into f.
func (f *Frequencies) Merge(other *Frequencies) {
	f.counter.Merge(other.counter)
}

// Clear resets f to empty.
func (f *Frequencies) Clear() {
	f.counter = containers.NewCounter()
}
