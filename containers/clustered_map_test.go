package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClusteredInsertMapLastTouchedIsLast(t *testing.T) {
	m := NewClusteredInsertMap[string, int]()
	insert := func(k string) func() int { return func() int { return 0 } }
	update := func(v *int) { *v++ }

	m.InsertOrUpdateWith("a", insert("a"), update)
	m.InsertOrUpdateWith("b", insert("b"), update)
	m.InsertOrUpdateWith("c", insert("c"), update)
	m.InsertOrUpdateWith("a", insert("a"), update) // touches "a" again

	var keys []string
	m.ForEach(func(k string, v int) { keys = append(keys, k) })
	assert.Equal(t, "a", keys[len(keys)-1])
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)
}

func TestClusteredInsertMapClusteredFastPath(t *testing.T) {
	m := NewClusteredInsertMap[string, int]()
	insert := func() int { return 0 }
	update := func(v *int) { *v++ }

	for i := 0; i < 5; i++ {
		m.InsertOrUpdateWith("x", insert, update)
	}
	v, ok := m.Get("x")
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	assert.Equal(t, 1, m.Len())
}
