// Package containers provides the streaming-friendly data structures shared
// by the aggregation engine and pipeline runtime: bounded top-k heaps, a
// clustered-insert map, union-find, exact and approximate counters.
package containers

import "container/heap"

// Ordered is anything with a total order via the built-in comparison
// operators.
type Ordered interface {
	~int | ~int64 | ~uint64 | ~float64 | ~string
}

// FixedReverseHeap retains the k largest items pushed into it, in O(log k)
// time and O(k) memory. It is a min-heap internally so the smallest of the
// retained items can be evicted in O(log k) when a larger item arrives.
//
// Ported from the capacity-bounded push/pop logic in
// collections/fixed_reverse_heap.rs, using Go's container/heap the way the
// teacher's menu/fuzzy/rank.go scoredRecordHeap does.
type FixedReverseHeap[T Ordered] struct {
	capacity int
	items    minHeap[T]
}

// NewFixedReverseHeap constructs a heap that retains at most capacity items.
func NewFixedReverseHeap[T Ordered](capacity int) *FixedReverseHeap[T] {
	return &FixedReverseHeap[T]{capacity: capacity}
}

// Push offers an item to the heap. It returns true if the item was
// retained (either because the heap had room, or because it displaced the
// current smallest retained item).
func (h *FixedReverseHeap[T]) Push(item T) bool {
	if len(h.items) < h.capacity {
		heap.Push(&h.items, item)
		return true
	}
	if h.capacity == 0 || len(h.items) == 0 {
		return false
	}
	if item > h.items[0] {
		h.items[0] = item
		heap.Fix(&h.items, 0)
		return true
	}
	return false
}

// Len returns the number of items currently retained.
func (h *FixedReverseHeap[T]) Len() int {
	return len(h.items)
}

// IntoSortedSlice drains the heap, returning its contents in descending
// order. The heap is empty after this call.
func (h *FixedReverseHeap[T]) IntoSortedSlice() []T {
	n := len(h.items)
	out := make([]T, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h.items).(T)
	}
	return out
}

type minHeap[T Ordered] []T

func (h minHeap[T]) Len() int            { return len(h) }
func (h minHeap[T]) Less(i, j int) bool  { return h[i] < h[j] }
func (h minHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap[T]) Push(x interface{}) { *h = append(*h, x.(T)) }
func (h *minHeap[T]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// KeyedItem pairs a sort key with an arbitrary payload.
type KeyedItem[K Ordered, V any] struct {
	Key   K
	Value V
}

// FixedReverseHeapMap is FixedReverseHeap generalized to carry a payload
// alongside each key. Matching the Rust original exactly: once the heap is
// full, only a strictly-larger key displaces the current worst entry; an
// equal key is dropped. Use FixedReverseHeapMapWithTies when equal-keyed
// entries must all be retained (e.g. Frequencies.MostCommon).
type FixedReverseHeapMap[K Ordered, V any] struct {
	capacity int
	items    keyedMinHeap[K, V]
}

// NewFixedReverseHeapMap constructs a heap retaining at most capacity
// key/value entries, largest key first.
func NewFixedReverseHeapMap[K Ordered, V any](capacity int) *FixedReverseHeapMap[K, V] {
	return &FixedReverseHeapMap[K, V]{capacity: capacity}
}

// PushWith offers key/value to the map. valueFn is invoked only if the item
// would be retained, mirroring the Rust original's push_with(item, || value).
func (m *FixedReverseHeapMap[K, V]) PushWith(key K, valueFn func() V) bool {
	if len(m.items) < m.capacity {
		heap.Push(&m.items, KeyedItem[K, V]{Key: key, Value: valueFn()})
		return true
	}
	if m.capacity == 0 || len(m.items) == 0 {
		return false
	}
	if key > m.items[0].Key {
		m.items[0] = KeyedItem[K, V]{Key: key, Value: valueFn()}
		heap.Fix(&m.items, 0)
		return true
	}
	return false
}

// Len returns the number of entries currently retained.
func (m *FixedReverseHeapMap[K, V]) Len() int {
	return len(m.items)
}

// IntoSortedSlice drains the map, returning entries ordered by key
// descending. The map is empty after this call.
func (m *FixedReverseHeapMap[K, V]) IntoSortedSlice() []KeyedItem[K, V] {
	n := len(m.items)
	out := make([]KeyedItem[K, V], n)
	for i := n - 1; i >= 0; i-- {
		out[i] = heap.Pop(&m.items).(KeyedItem[K, V])
	}
	return out
}

type keyedMinHeap[K Ordered, V any] []KeyedItem[K, V]

func (h keyedMinHeap[K, V]) Len() int           { return len(h) }
func (h keyedMinHeap[K, V]) Less(i, j int) bool { return h[i].Key < h[j].Key }
func (h keyedMinHeap[K, V]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *keyedMinHeap[K, V]) Push(x interface{}) {
	*h = append(*h, x.(KeyedItem[K, V]))
}
func (h *keyedMinHeap[K, V]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// FixedReverseHeapMapWithTies is FixedReverseHeapMap plus a side bucket that
// retains every entry tied with the current worst-of-the-best key, so a
// caller that needs "all of the top value, even if more than k rows share
// it" (spec.md's Frequencies alphabetical tie-break scenario) doesn't lose
// entries arbitrarily. Ported from
// collections/fixed_reverse_heap.rs::FixedReverseHeapMapWithTies.
type FixedReverseHeapMapWithTies[K Ordered, V any] struct {
	capacity int
	items    keyedMinHeap[K, V]
	ties     []KeyedItem[K, V]
}

// NewFixedReverseHeapMapWithTies constructs a ties-preserving top-k map.
func NewFixedReverseHeapMapWithTies[K Ordered, V any](capacity int) *FixedReverseHeapMapWithTies[K, V] {
	return &FixedReverseHeapMapWithTies[K, V]{capacity: capacity}
}

// Len returns the number of entries currently retained, including ties.
func (m *FixedReverseHeapMapWithTies[K, V]) Len() int {
	return len(m.items) + len(m.ties)
}

// PushWith offers key/value to the map.
func (m *FixedReverseHeapMapWithTies[K, V]) PushWith(key K, valueFn func() V) bool {
	if len(m.items) < m.capacity {
		heap.Push(&m.items, KeyedItem[K, V]{Key: key, Value: valueFn()})
		return true
	}
	if m.capacity == 0 || len(m.items) == 0 {
		return false
	}

	worst := m.items[0].Key
	switch {
	case key > worst:
		evicted := m.items[0]
		m.items[0] = KeyedItem[K, V]{Key: key, Value: valueFn()}
		heap.Fix(&m.items, 0)
		if m.items[0].Key == worst {
			// The worst retained key is unchanged, so the displaced
			// entry is still tied with it.
			m.ties = append(m.ties, evicted)
		} else {
			m.ties = m.ties[:0]
		}
		return true
	case key == worst:
		m.ties = append(m.ties, KeyedItem[K, V]{Key: key, Value: valueFn()})
		return true
	default:
		return false
	}
}

// IntoSortedSlice drains the map, returning entries ordered by key
// descending; ties with the minimum retained key are appended in push
// order after the heap-ordered entries. The map is empty after this call.
func (m *FixedReverseHeapMapWithTies[K, V]) IntoSortedSlice() []KeyedItem[K, V] {
	hl := len(m.items)
	out := make([]KeyedItem[K, V], hl+len(m.ties))
	for i := hl - 1; i >= 0; i-- {
		out[i] = heap.Pop(&m.items).(KeyedItem[K, V])
	}
	copy(out[hl:], m.ties)
	m.ties = nil
	return out
}
