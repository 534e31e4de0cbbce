package xanerr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessageIncludesRowAndExpr(t *testing.T) {
	err := EvaluationError("division by zero").WithRow(42).WithExpr("a / b")
	msg := err.Error()
	assert.Contains(t, msg, "evaluation error")
	assert.Contains(t, msg, "division by zero")
	assert.Contains(t, msg, `"a / b"`)
	assert.Contains(t, msg, "row 42")
}

func TestErrorMessageOmitsRowWhenUnknown(t *testing.T) {
	err := ParseError("unexpected token")
	assert.NotContains(t, err.Error(), "row")
}

func TestIsRecoversKindThroughPkgErrorsWrap(t *testing.T) {
	base := IoError("could not open file")
	wrapped := errors.Wrap(base, "reading input")
	assert.True(t, Is(wrapped, KindIO))
	assert.False(t, Is(wrapped, KindParse))
}

func TestIsReturnsFalseForForeignErrors(t *testing.T) {
	assert.False(t, Is(errors.New("some other failure"), KindIO))
}

func TestFatalClassification(t *testing.T) {
	for _, k := range []Kind{KindIO, KindParse, KindConcretization, KindAggregator, KindResource} {
		assert.True(t, Fatal(k), "%s should be fatal", k)
	}
	assert.False(t, Fatal(KindEvaluation))
	assert.False(t, Fatal(KindUserAbort))
}

func TestUserAbortIsNotAFailureKind(t *testing.T) {
	err := UserAbort()
	require.Equal(t, KindUserAbort, err.Kind)
	assert.False(t, Fatal(err.Kind))
}
