package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabbyio/tabby/record"
)

func header() *record.Header {
	return record.NewHeader([]string{"name", "surname", "age", "vec_a", "vec_b", "name"})
}

func resolve(t *testing.T, spec string) []int {
	t.Helper()
	sel, err := Parse(spec)
	require.NoError(t, err)
	idx, err := sel.Resolve(header())
	require.NoError(t, err)
	return idx
}

func TestSelectAllWildcard(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, resolve(t, "*"))
}

func TestSelectSingleNameAndIndex(t *testing.T) {
	assert.Equal(t, []int{1}, resolve(t, "surname"))
	assert.Equal(t, []int{2}, resolve(t, "2"))
	assert.Equal(t, []int{5}, resolve(t, "-1"))
}

func TestSelectRangeByName(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, resolve(t, "name:age"))
}

func TestSelectOpenEndedRanges(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, resolve(t, ":age"))
	assert.Equal(t, []int{3, 4, 5}, resolve(t, "vec_a:"))
}

func TestSelectReverseRange(t *testing.T) {
	assert.Equal(t, []int{2, 1, 0}, resolve(t, "age:name"))
}

func TestSelectGlob(t *testing.T) {
	assert.Equal(t, []int{3, 4}, resolve(t, "vec_*"))
}

func TestSelectInversion(t *testing.T) {
	assert.Equal(t, []int{0, 2, 3, 4, 5}, resolve(t, "!surname"))
}

func TestSelectDuplicatesAllowed(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 1}, resolve(t, "*,surname"))
}

func TestSelectOccurrenceDisambiguation(t *testing.T) {
	assert.Equal(t, []int{0}, resolve(t, `name[0]`))
	assert.Equal(t, []int{5}, resolve(t, `name[1]`))
	assert.Equal(t, []int{5}, resolve(t, `name[-1]`))
}

func TestSelectQuotedLiteral(t *testing.T) {
	h := record.NewHeader([]string{"weird, name", "b"})
	sel, err := Parse(`"weird, name",b`)
	require.NoError(t, err)
	idx, err := sel.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, idx)
}

func TestSelectUnknownNameFails(t *testing.T) {
	sel, err := Parse("nope")
	require.NoError(t, err)
	_, err = sel.Resolve(header())
	assert.Error(t, err)
}

func TestSelectOutOfBoundsIndexFails(t *testing.T) {
	sel, err := Parse("100")
	require.NoError(t, err)
	_, err = sel.Resolve(header())
	assert.Error(t, err)
}

func TestSelectNonIntegerOccurrenceFails(t *testing.T) {
	_, err := Parse(`name[x]`)
	assert.Error(t, err)
}
