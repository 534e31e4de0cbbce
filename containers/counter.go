package containers

import "sort"

// Counter is an exact frequency counter over string keys, grounded on the
// small hand-rolled container idiom of menu/fuzzy/recordidset.go.
type Counter struct {
	counts map[string]uint64
}

// NewCounter constructs an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]uint64)}
}

// Add increments key's count by one.
func (c *Counter) Add(key string) {
	c.AddCount(key, 1)
}

// AddCount increments key's count by n.
func (c *Counter) AddCount(key string, n uint64) {
	c.counts[key] += n
}

// Count returns the current count for key.
func (c *Counter) Count(key string) uint64 {
	return c.counts[key]
}

// Cardinality returns the number of distinct keys seen.
func (c *Counter) Cardinality() int {
	return len(c.counts)
}

// Merge folds other's counts into c.
func (c *Counter) Merge(other *Counter) {
	for k, n := range other.counts {
		c.counts[k] += n
	}
}

// ForEach calls f for every (key, count) pair, in unspecified order.
func (c *Counter) ForEach(f func(key string, count uint64)) {
	for k, n := range c.counts {
		f(k, n)
	}
}

// Mode returns the single most frequent key, breaking ties in favor of the
// lexicographically greatest key (matching the Rust original's
// `(count, key) > entry` comparison, which compares keys ascending so the
// greatest key wins a tie).
func (c *Counter) Mode() (string, bool) {
	var best string
	var bestCount uint64
	found := false
	for k, n := range c.counts {
		if !found || n > bestCount || (n == bestCount && k > best) {
			best, bestCount, found = k, n, true
		}
	}
	return best, found
}

// Modes returns every key tied for the highest count.
func (c *Counter) Modes() []string {
	var bestCount uint64
	var keys []string
	for k, n := range c.counts {
		switch {
		case len(keys) == 0 || n > bestCount:
			bestCount = n
			keys = []string{k}
		case n == bestCount:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// MostCommon returns the k most frequent keys, ties broken alphabetically
// ascending, matching the original's (count, Reverse(key)) heap ordering
// in `frequencies.rs::most_common` (a smaller key wins a tie for the last
// retained slot). It gathers through a FixedReverseHeapMapWithTies, which
// retains every key tied with the k-th count, then truncates to the k
// alphabetically-smallest among that tied boundary group, so the result
// never exceeds k entries.
func (c *Counter) MostCommon(k int) []KeyedItem[uint64, string] {
	heap := NewFixedReverseHeapMapWithTies[uint64, string](k)
	for key, count := range c.counts {
		key := key
		heap.PushWith(count, func() string { return key })
	}
	items := heap.IntoSortedSlice()
	sortTiesAlphabetically(items)
	if len(items) > k {
		items = items[:k]
	}
	return items
}

// sortTiesAlphabetically stable-sorts runs of equal keys ascending by
// value, matching Frequencies::most_common's use of Reverse(key) inside
// the heap ordering (count descending, value ascending within a count).
func sortTiesAlphabetically(items []KeyedItem[uint64, string]) {
	start := 0
	for start < len(items) {
		end := start + 1
		for end < len(items) && items[end].Key == items[start].Key {
			end++
		}
		sort.Slice(items[start:end], func(i, j int) bool {
			return items[start:end][i].Value < items[start:end][j].Value
		})
		start = end
	}
}

// Join concatenates every distinct key, sorted ascending, with separator.
func (c *Counter) Join(separator string) string {
	keys := make([]string, 0, len(c.counts))
	for k := range c.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += separator
		}
		out += k
	}
	return out
}
