package agg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabbyio/tabby/moonblade"
)

func TestCountAggregator(t *testing.T) {
	c := NewCount()
	c.Add(true)
	c.Add(true)
	c.Add(false)
	assert.Equal(t, int64(2), c.Truthy())
	assert.Equal(t, int64(1), c.Falsey())
	assert.Equal(t, int64(3), c.Total())
	assert.InDelta(t, 2.0/3.0, c.Ratio(), 1e-9)
	assert.Equal(t, "66%", c.Percentage())
}

func TestSumStaysIntegerUntilFloatAdded(t *testing.T) {
	s := NewSum()
	s.Add(moonblade.IntNumber(2))
	s.Add(moonblade.IntNumber(3))
	require.False(t, s.Total().IsFloat())
	assert.Equal(t, int64(5), s.Total().Int())

	s.Add(moonblade.FloatNumber(1.5))
	require.True(t, s.Total().IsFloat())
	assert.InDelta(t, 6.5, s.Total().Float(), 1e-9)
}

func TestAllAnyAggregator(t *testing.T) {
	a := NewAllAny()
	a.Add(true)
	a.Add(true)
	assert.True(t, a.All())
	a.Add(false)
	assert.False(t, a.All())
	assert.True(t, a.Any())
}

func TestTypesMostLikelyTypePriority(t *testing.T) {
	types := NewTypes()
	assert.Equal(t, []string{}, types.SortedTypes())
	_, ok := types.MostLikelyType()
	require.False(t, ok)

	types.SetInt()
	mlt, _ := types.MostLikelyType()
	assert.Equal(t, "int", mlt)

	types.SetFloat()
	mlt, _ = types.MostLikelyType()
	assert.Equal(t, "float", mlt)

	types.SetString()
	mlt, _ = types.MostLikelyType()
	assert.Equal(t, "string", mlt)
}

func TestFrequenciesModeAndMostCommon(t *testing.T) {
	f := NewFrequencies()
	for _, v := range []string{"a", "b", "a", "c", "b", "a"} {
		f.Add(v)
	}
	mode, ok := f.Mode()
	require.True(t, ok)
	assert.Equal(t, "a", mode)

	top := f.MostCommon(2)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].Value)
}

func TestAggregatorDispatchMean(t *testing.T) {
	kind, err := MethodKind("mean")
	require.NoError(t, err)
	a := NewAggregator(kind)
	require.NoError(t, a.Add(moonblade.FromInt(2)))
	require.NoError(t, a.Add(moonblade.FromInt(4)))
	require.NoError(t, a.Add(moonblade.FromInt(6)))
	v, err := a.Read("mean", 0)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v.Float, 1e-9)
}

func TestAggregatorDispatchVarianceAndStdev(t *testing.T) {
	kind, err := MethodKind("stdev")
	require.NoError(t, err)
	a := NewAggregator(kind)
	for _, n := range []int64{2, 4, 4, 4, 5, 5, 7, 9} {
		require.NoError(t, a.Add(moonblade.FromInt(n)))
	}
	v, err := a.Read("stdev", 0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v.Float, 1e-9)
}

func TestAggregatorDispatchCorrelation(t *testing.T) {
	kind, err := MethodKind("correlation")
	require.NoError(t, err)
	a := NewAggregator(kind)
	xs := []int64{1, 4, 5, 7, 9}
	ys := []int64{0, 6, 7, 9, 3}
	for i := range xs {
		require.NoError(t, a.AddPair(moonblade.FromInt(xs[i]), moonblade.FromInt(ys[i])))
	}
	v, err := a.Read("correlation", 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.442939783914149, v.Float, 1e-9)
}

func TestAggregatorMergeRequiresSameKind(t *testing.T) {
	sumKind, _ := MethodKind("sum")
	meanKind, _ := MethodKind("mean")
	a := NewAggregator(sumKind)
	b := NewAggregator(meanKind)
	require.Error(t, a.Merge(b))
}

func TestUnknownMethodRejected(t *testing.T) {
	_, err := MethodKind("bogus")
	require.Error(t, err)
}

func TestApproxCardinalityAndQuantilesDispatch(t *testing.T) {
	kind, _ := MethodKind("cardinality")
	a := NewAggregator(kind)
	for i := 0; i < 100; i++ {
		require.NoError(t, a.Add(moonblade.FromInt(int64(i%30))))
	}
	a.Finalize()
	v, err := a.Read("cardinality", 0)
	require.NoError(t, err)
	assert.InDelta(t, 30, v.Int, 6)

	qkind, _ := MethodKind("quantile")
	q := NewAggregator(qkind)
	for i := 1; i <= 1000; i++ {
		require.NoError(t, q.Add(moonblade.FromInt(int64(i))))
	}
	q.Finalize()
	v, err = q.Read("quantile", 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 500, v.Float, 25)
}
