package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigForPathNoRulesReturnsDefault(t *testing.T) {
	rs := RuleSet{}
	c := rs.ConfigForPath("test.csv")
	assert.Equal(t, DefaultConfig(), c)
}

func TestConfigForPathAppliesMatchingRuleOnly(t *testing.T) {
	semicolon := ";"
	tab := "\t"
	rs := RuleSet{
		Rules: []Rule{
			{Name: "tsv", Pattern: "**/*.tsv", Config: PartialConfig{Delimiter: &tab}},
			{Name: "ssv", Pattern: "**/*.ssv", Config: PartialConfig{Delimiter: &semicolon}},
		},
	}

	c := rs.ConfigForPath("data/input.tsv")
	assert.Equal(t, "\t", c.Delimiter)
	assert.Equal(t, DefaultQuote, c.Quote)
}

func TestConfigForPathLaterRuleWins(t *testing.T) {
	semicolon := ";"
	pipe := "|"
	rs := RuleSet{
		Rules: []Rule{
			{Name: "first", Pattern: "**/*.csv", Config: PartialConfig{Delimiter: &semicolon}},
			{Name: "second", Pattern: "**/*.csv", Config: PartialConfig{Delimiter: &pipe}},
		},
	}

	c := rs.ConfigForPath("data/input.csv")
	assert.Equal(t, "|", c.Delimiter)
}

func TestRuleSetValidateRejectsBadRule(t *testing.T) {
	bad := "::"
	rs := RuleSet{Rules: []Rule{{Name: "bad", Pattern: "**", Config: PartialConfig{Delimiter: &bad}}}}
	require.Error(t, rs.Validate())
}
