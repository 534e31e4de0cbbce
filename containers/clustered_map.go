package containers

// ClusteredInsertMap is an insertion-ordered map that caches the
// last-touched key, avoiding a hash lookup on repeated hits against the
// same key. On a hit for a key that isn't the last one touched, the entry
// is moved to the end of the iteration order — keeping the "cache" hot for
// clustered input, at the cost of iteration order no longer being strict
// insertion order.
//
// Ported from collections/clustered_insert_hashmap.rs (IndexMap-backed in
// the original; here a map plus a slice of keys, since Go's map doesn't
// preserve insertion order on its own).
type ClusteredInsertMap[K comparable, V any] struct {
	index    map[K]int
	keys     []K
	values   []V
	lastKey  K
	hasLast  bool
}

// NewClusteredInsertMap constructs an empty ClusteredInsertMap.
func NewClusteredInsertMap[K comparable, V any]() *ClusteredInsertMap[K, V] {
	return &ClusteredInsertMap[K, V]{index: make(map[K]int)}
}

// Len returns the number of distinct keys held.
func (m *ClusteredInsertMap[K, V]) Len() int {
	return len(m.keys)
}

// Get returns the value for key, if present.
func (m *ClusteredInsertMap[K, V]) Get(key K) (V, bool) {
	if i, ok := m.index[key]; ok {
		return m.values[i], true
	}
	var zero V
	return zero, false
}

// InsertOrUpdateWith inserts key with insertFn() if absent, or calls
// updateFn on the existing value otherwise. It checks the last-touched key
// first before falling back to a map lookup, and promotes the touched
// entry to the end of iteration order when it wasn't already there.
func (m *ClusteredInsertMap[K, V]) InsertOrUpdateWith(key K, insertFn func() V, updateFn func(*V)) {
	if m.hasLast && m.lastKey == key {
		last := len(m.keys) - 1
		updateFn(&m.values[last])
		return
	}

	if i, ok := m.index[key]; ok {
		updateFn(&m.values[i])
		m.moveToEnd(i)
		m.lastKey, m.hasLast = key, true
		return
	}

	m.keys = append(m.keys, key)
	m.values = append(m.values, insertFn())
	m.index[key] = len(m.keys) - 1
	m.lastKey, m.hasLast = key, true
}

// moveToEnd swaps the entry at index i to the last position, keeping the
// index map consistent, mirroring swap_indices in the Rust original.
func (m *ClusteredInsertMap[K, V]) moveToEnd(i int) {
	last := len(m.keys) - 1
	if i == last {
		return
	}
	m.keys[i], m.keys[last] = m.keys[last], m.keys[i]
	m.values[i], m.values[last] = m.values[last], m.values[i]
	m.index[m.keys[i]] = i
	m.index[m.keys[last]] = last
}

// ForEach iterates entries in current iteration order: insertion order,
// except that on each non-last-key hit the touched entry swaps places
// with the last entry, so the most recently touched key is always last
// and the previously last key takes the touched key's old position.
func (m *ClusteredInsertMap[K, V]) ForEach(f func(key K, value V)) {
	for i, k := range m.keys {
		f(k, m.values[i])
	}
}
