package moonblade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabbyio/tabby/record"
)

func evalExpr(t *testing.T, src string, header *record.Header, row record.Row) Value {
	t.Helper()
	ast, err := Parse(src)
	require.NoError(t, err, "parse %q", src)
	concrete, err := Concretise(ast, header)
	require.NoError(t, err, "concretise %q", src)
	v, err := concrete.Eval(&EvalContext{Header: header, Row: row})
	require.NoError(t, err, "eval %q", src)
	return v
}

func testHeader() *record.Header {
	return record.NewHeader([]string{"name", "age", "score"})
}

func testRow() record.Row {
	return record.Row{Bytes: []byte("john,30,9.5"), Offsets: []int{4, 7}}
}

func TestEvalArithmetic(t *testing.T) {
	h := testHeader()
	row := testRow()
	v := evalExpr(t, "add(1, 2, 3)", h, row)
	assert.Equal(t, int64(6), v.Int)

	v = evalExpr(t, "1 + 2 * 3", h, row)
	assert.Equal(t, int64(7), v.Int)

	v = evalExpr(t, "(1 + 2) * 3", h, row)
	assert.Equal(t, int64(9), v.Int)
}

func TestEvalEuclideanDivMod(t *testing.T) {
	h := testHeader()
	row := testRow()
	v := evalExpr(t, "-7 // 2", h, row)
	assert.Equal(t, int64(-4), v.Int)

	v = evalExpr(t, "-7 % 2", h, row)
	assert.Equal(t, int64(1), v.Int)
}

func TestEvalColumnReference(t *testing.T) {
	h := testHeader()
	row := testRow()
	v := evalExpr(t, "upper(name)", h, row)
	assert.Equal(t, "JOHN", v.Str)

	v = evalExpr(t, "age", h, row)
	assert.Equal(t, "30", string(v.Bytes))
}

func TestEvalNumericEquality(t *testing.T) {
	h := testHeader()
	row := testRow()
	v := evalExpr(t, "1 == 1.0", h, row)
	assert.True(t, v.Bool)
}

func TestEvalNaNEqualityVsOrdering(t *testing.T) {
	h := testHeader()
	row := testRow()
	// 0.0/0.0 is rejected as division by zero rather than producing a
	// NaN, so NaN is exercised here through sqrt(-1) instead.
	v := evalExpr(t, "sqrt(-1) == sqrt(-1)", h, row)
	assert.True(t, v.Bool, "NaN must equal itself under value equality")

	v = evalExpr(t, "sqrt(-1) < sqrt(-1)", h, row)
	assert.False(t, v.Bool, "ordering stays strict IEEE-754 for NaN")
}

func TestEvalIfExpression(t *testing.T) {
	h := testHeader()
	row := testRow()
	v := evalExpr(t, `if(age > 18, "adult", "minor")`, h, row)
	assert.Equal(t, "adult", v.Str)
}

func TestEvalPipelineApplication(t *testing.T) {
	h := testHeader()
	row := testRow()
	v := evalExpr(t, "name | upper", h, row)
	assert.Equal(t, "JOHN", v.Str)

	v = evalExpr(t, "name | upper(_)", h, row)
	assert.Equal(t, "JOHN", v.Str)
}

func TestEvalLambdaMapFilter(t *testing.T) {
	h := testHeader()
	row := testRow()
	v := evalExpr(t, "map([1,2,3], x => x * 2)", h, row)
	require.Equal(t, 3, len(v.List))
	assert.Equal(t, int64(2), v.List[0].Int)
	assert.Equal(t, int64(6), v.List[2].Int)

	v = evalExpr(t, "filter([1,2,3,4], x => x > 2)", h, row)
	require.Equal(t, 2, len(v.List))
	assert.Equal(t, int64(3), v.List[0].Int)
}

func TestEvalOccurrenceColumn(t *testing.T) {
	h := record.NewHeader([]string{"a", "b", "a"})
	row := record.Row{Bytes: []byte("1,2,3"), Offsets: []int{1, 3}}
	v := evalExpr(t, "a[1]", h, row)
	assert.Equal(t, "3", string(v.Bytes))
}

func TestEvalColBuiltin(t *testing.T) {
	h := testHeader()
	row := testRow()
	v := evalExpr(t, `col(0)`, h, row)
	assert.Equal(t, "john", string(v.Bytes))
	v = evalExpr(t, `col("score")`, h, row)
	assert.Equal(t, "9.5", string(v.Bytes))
}

func TestEvalColsGlob(t *testing.T) {
	h := record.NewHeader([]string{"vec_a", "vec_b", "name"})
	row := record.Row{Bytes: []byte("1,2,x"), Offsets: []int{1, 3}}
	v := evalExpr(t, `cols("vec_*")`, h, row)
	require.Equal(t, 2, len(v.List))
}

func TestConcretiseUnknownColumn(t *testing.T) {
	_, err := Parse("nope")
	require.NoError(t, err)
	ast, _ := Parse("nope + 1")
	h := testHeader()
	_, err = Concretise(ast, h)
	require.NoError(t, err) // "nope" becomes a free variable, not an error
}

func TestConcretiseUnknownFunction(t *testing.T) {
	ast, err := Parse("bogus(1,2)")
	require.NoError(t, err)
	_, err = Concretise(ast, testHeader())
	require.Error(t, err)
	var cerr *ConcretiseError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "UnknownFunction", cerr.Kind)
}

func TestConcretiseArityMismatch(t *testing.T) {
	ast, err := Parse("sub(1,2,3)")
	require.NoError(t, err)
	_, err = Concretise(ast, testHeader())
	require.Error(t, err)
	var cerr *ConcretiseError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "ArityMismatch", cerr.Kind)
}

func TestDivideByZeroIsMathError(t *testing.T) {
	h := testHeader()
	row := testRow()
	ast, err := Parse("1 / 0")
	require.NoError(t, err)
	concrete, err := Concretise(ast, h)
	require.NoError(t, err)
	_, err = concrete.Eval(&EvalContext{Header: h, Row: row})
	require.Error(t, err)
}

func TestNamedExpression(t *testing.T) {
	ast, err := Parse("age + 1 as next_age")
	require.NoError(t, err)
	named, ok := ast.(NamedNode)
	require.True(t, ok)
	assert.Equal(t, "next_age", named.Name)
}
