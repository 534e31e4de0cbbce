package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, DefaultDelimiter, c.Delimiter)
	assert.Equal(t, DefaultQuote, c.Quote)
	assert.False(t, c.NoHeaders)
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestConfigApplyOverridesOnlySetFields(t *testing.T) {
	c := DefaultConfig()
	c.Apply(PartialConfig{Delimiter: strptr(";")})
	assert.Equal(t, ";", c.Delimiter)
	assert.Equal(t, DefaultQuote, c.Quote)
}

func TestConfigApplyNoHeaders(t *testing.T) {
	c := DefaultConfig()
	c.Apply(PartialConfig{NoHeaders: boolptr(true)})
	assert.True(t, c.NoHeaders)
}

func TestPartialConfigValidateRejectsMultiByteDelimiter(t *testing.T) {
	p := PartialConfig{Delimiter: strptr("::")}
	require.Error(t, p.Validate())
}

func TestPartialConfigValidateRejectsMultiByteQuote(t *testing.T) {
	p := PartialConfig{Quote: strptr("''")}
	require.Error(t, p.Validate())
}

func TestPartialConfigValidateAcceptsEmpty(t *testing.T) {
	require.NoError(t, PartialConfig{}.Validate())
}
