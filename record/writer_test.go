package record

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRows(t *testing.T, rows [][]string, opts ...WriterOption) string {
	var buf bytes.Buffer
	w := NewWriter(&buf, opts...)
	for _, row := range rows {
		require.NoError(t, w.WriteRow(row))
	}
	require.NoError(t, w.Flush())
	return buf.String()
}

func TestWriterPlainFieldsUnquoted(t *testing.T) {
	out := writeRows(t, [][]string{{"a", "b", "c"}})
	assert.Equal(t, "a,b,c\n", out)
}

func TestWriterQuotesFieldContainingDelimiter(t *testing.T) {
	out := writeRows(t, [][]string{{"a,b", "c"}})
	assert.Equal(t, "\"a,b\",c\n", out)
}

func TestWriterEscapesEmbeddedQuote(t *testing.T) {
	out := writeRows(t, [][]string{{`say "hi"`}})
	assert.Equal(t, "\"say \"\"hi\"\"\"\n", out)
}

func TestWriterQuotesFieldContainingNewline(t *testing.T) {
	out := writeRows(t, [][]string{{"line1\nline2"}})
	assert.Equal(t, "\"line1\nline2\"\n", out)
}

func TestWriterRoundTripsThroughReader(t *testing.T) {
	rows := [][]string{
		{"name", "note"},
		{"alice", `she said "hi", once`},
		{"bob", "plain"},
	}
	out := writeRows(t, rows)

	r := NewReader(bytes.NewReader([]byte(out)), 64)
	for _, expected := range rows {
		row, err := r.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, expected, row.Fields())
	}
}

func TestWriterCustomDelimiterAndQuote(t *testing.T) {
	out := writeRows(t, [][]string{{"a;b", "c"}}, WithWriterDelimiter(';'), WithWriterQuote('\''))
	assert.Equal(t, "'a;b';c\n", out)
}
