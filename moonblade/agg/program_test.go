package agg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabbyio/tabby/moonblade"
	"github.com/tabbyio/tabby/record"
)

func mustConcretise(t *testing.T, src string, h *record.Header) *moonblade.ConcreteExpr {
	t.Helper()
	ast, err := moonblade.Parse(src)
	require.NoError(t, err)
	c, err := moonblade.Concretise(ast, h)
	require.NoError(t, err)
	return c
}

func TestProgramGroupsByKeyAndSumsMean(t *testing.T) {
	h := record.NewHeader([]string{"city", "amount"})
	groupKeyExpr := mustConcretise(t, "city", h)
	amountExpr := mustConcretise(t, "amount", h)

	specs := []Spec{
		{Name: "total", Expr: amountExpr, Method: "sum"},
		{Name: "avg", Expr: amountExpr, Method: "mean"},
		{Name: "n", Expr: amountExpr, Method: "count"},
	}

	p, err := NewProgram(h, []*moonblade.ConcreteExpr{groupKeyExpr}, specs)
	require.NoError(t, err)

	rows := [][]byte{
		[]byte("paris,10"),
		[]byte("paris,20"),
		[]byte("london,5"),
	}
	offsets := [][]int{{5}, {5}, {6}}

	for i, b := range rows {
		row := record.Row{Bytes: b, Offsets: offsets[i]}
		ctx := &moonblade.EvalContext{Header: h, Row: row}
		require.NoError(t, p.Process(ctx))
	}

	out, err := p.Readout()
	require.NoError(t, err)
	require.Len(t, out, 2)

	byCity := map[string]Row{}
	for _, r := range out {
		byCity[r.GroupKey[0].Serialize()] = r
	}

	paris := byCity["paris"]
	assert.Equal(t, int64(30), paris.Values[0].Int)
	assert.InDelta(t, 15.0, paris.Values[1].Float, 1e-9)
	assert.Equal(t, int64(2), paris.Values[2].Int)

	london := byCity["london"]
	assert.Equal(t, int64(5), london.Values[0].Int)
	assert.Equal(t, int64(1), london.Values[2].Int)
}

func TestProgramDeduplicatesSharedAggregatorSlots(t *testing.T) {
	h := record.NewHeader([]string{"x"})
	xExpr := mustConcretise(t, "x", h)

	specs := []Spec{
		{Name: "variance", Expr: xExpr, Method: "variance"},
		{Name: "stdev", Expr: xExpr, Method: "stdev"},
	}
	p, err := NewProgram(h, nil, specs)
	require.NoError(t, err)

	// variance and stdev are both Welford-family reads of the same
	// expression, so they share one underlying aggregator slot.
	assert.Equal(t, p.specSlot[0], p.specSlot[1])
	assert.Len(t, p.slots, 1)
}

func TestProgramNoGroupKeyIsSingleGlobalGroup(t *testing.T) {
	h := record.NewHeader([]string{"x"})
	xExpr := mustConcretise(t, "x", h)
	specs := []Spec{{Name: "total", Expr: xExpr, Method: "sum"}}
	p, err := NewProgram(h, nil, specs)
	require.NoError(t, err)

	for _, b := range [][]byte{[]byte("1"), []byte("2"), []byte("3")} {
		ctx := &moonblade.EvalContext{Header: h, Row: record.Row{Bytes: b}}
		require.NoError(t, p.Process(ctx))
	}

	out, err := p.Readout()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(6), out[0].Values[0].Int)
}
