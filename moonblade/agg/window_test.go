package agg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabbyio/tabby/record"
)

func TestWindowReversibleSumSlidesCorrectly(t *testing.T) {
	h := record.NewHeader([]string{"x"})
	xExpr := mustConcretise(t, "x", h)
	specs := []Spec{{Name: "total", Expr: xExpr, Method: "sum"}}

	w, err := NewWindow(3, h, specs)
	require.NoError(t, err)

	values := []string{"1", "2", "3", "4", "5"}
	var lastTotal int64
	for _, v := range values {
		out, err := w.Push(record.Row{Bytes: []byte(v)})
		require.NoError(t, err)
		require.Len(t, out, 1)
		lastTotal = out[0].Values[0].Int
	}
	// window holds the last 3 pushed values: 3+4+5 = 12.
	assert.Equal(t, int64(12), lastTotal)
}

func TestWindowNonReversibleRecomputesFromRing(t *testing.T) {
	h := record.NewHeader([]string{"x"})
	xExpr := mustConcretise(t, "x", h)
	specs := []Spec{{Name: "stdev", Expr: xExpr, Method: "stdev"}}

	w, err := NewWindow(2, h, specs)
	require.NoError(t, err)

	for _, v := range []string{"10", "10", "20"} {
		_, err := w.Push(record.Row{Bytes: []byte(v)})
		require.NoError(t, err)
	}
	out, err := w.Push(record.Row{Bytes: []byte("20")})
	require.NoError(t, err)
	// window now holds [20, 20]: zero spread.
	assert.InDelta(t, 0.0, out[0].Values[0].Float, 1e-9)
}

func TestWindowRejectsZeroSize(t *testing.T) {
	h := record.NewHeader([]string{"x"})
	xExpr := mustConcretise(t, "x", h)
	specs := []Spec{{Name: "total", Expr: xExpr, Method: "sum"}}
	_, err := NewWindow(0, h, specs)
	require.Error(t, err)
}
