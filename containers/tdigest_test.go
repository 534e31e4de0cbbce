package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTDigestMedianOfUniformRange(t *testing.T) {
	d := NewTDigest(TDigestSize)
	for i := 1; i <= 1000; i++ {
		d.Add(float64(i))
	}
	median := d.EstimateQuantile(0.5)
	assert.InDelta(t, 500.0, median, 25.0)

	p99 := d.EstimateQuantile(0.99)
	assert.InDelta(t, 990.0, p99, 25.0)
}

func TestTDigestFlushAcrossBufferBoundary(t *testing.T) {
	d := NewTDigest(TDigestSize)
	for i := 0; i < TDigestBufferSize+10; i++ {
		d.Add(float64(i))
	}
	d.Flush()
	assert.Equal(t, float64(TDigestBufferSize+10), d.totalWeight)
}

func TestTDigestMergeCombinesDistributions(t *testing.T) {
	a := NewTDigest(TDigestSize)
	b := NewTDigest(TDigestSize)
	for i := 1; i <= 500; i++ {
		a.Add(float64(i))
	}
	for i := 501; i <= 1000; i++ {
		b.Add(float64(i))
	}
	a.Merge(b)
	median := a.EstimateQuantile(0.5)
	assert.InDelta(t, 500.0, median, 40.0)
}

func TestTDigestSingleValue(t *testing.T) {
	d := NewTDigest(TDigestSize)
	d.Add(42.0)
	assert.Equal(t, 42.0, d.EstimateQuantile(0.5))
}
