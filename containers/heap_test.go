package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedReverseHeapNumbers(t *testing.T) {
	h := NewFixedReverseHeap[int](3)
	for _, n := range []int{1, 2, 3, 4, 5, 6} {
		h.Push(n)
	}
	assert.Equal(t, []int{6, 5, 4}, h.IntoSortedSlice())
}

func TestFixedReverseHeapZeroCapacity(t *testing.T) {
	h := NewFixedReverseHeap[int](0)
	assert.False(t, h.Push(1))
	assert.Equal(t, []int{}, h.IntoSortedSlice())
}

func TestFixedReverseHeapMap(t *testing.T) {
	h := NewFixedReverseHeapMap[int, string](2)
	h.PushWith(1, func() string { return "one" })
	h.PushWith(2, func() string { return "two" })
	h.PushWith(3, func() string { return "three" })

	got := h.IntoSortedSlice()
	assert.Equal(t, []KeyedItem[int, string]{{3, "three"}, {2, "two"}}, got)
}

func TestFixedReverseHeapMapWithTies(t *testing.T) {
	h := NewFixedReverseHeapMapWithTies[int, string](2)
	h.PushWith(1, func() string { return "one" })
	h.PushWith(2, func() string { return "two" })
	h.PushWith(3, func() string { return "three" })
	h.PushWith(2, func() string { return "four" })
	h.PushWith(2, func() string { return "five" })

	got := h.IntoSortedSlice()
	assert.Equal(t, []KeyedItem[int, string]{
		{3, "three"}, {2, "two"}, {2, "four"}, {2, "five"},
	}, got)
}

func TestFixedReverseHeapMapWithTiesClearsOnNewMax(t *testing.T) {
	h := NewFixedReverseHeapMapWithTies[int, string](2)
	h.PushWith(1, func() string { return "a" })
	h.PushWith(1, func() string { return "b" })
	h.PushWith(2, func() string { return "c" })
	// 2 displaces one of the 1s; the other 1 is still the worst retained
	// key, so the displaced 1 is kept as a tie.
	assert.Equal(t, 3, h.Len())
	h.PushWith(3, func() string { return "d" })
	// 3 displaces the last 1, the worst retained key becomes 2, and the
	// stale 1-tier ties are dropped.
	got := h.IntoSortedSlice()
	assert.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Key)
}
