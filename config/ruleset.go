package config

import (
	"fmt"
	"log"

	"github.com/pkg/errors"
)

// Rule is a configuration rule. Pattern is a glob matched against the
// path of the input file being processed; if it matches, Config is
// applied as an overlay on top of whatever's accumulated so far.
type Rule struct {
	Name    string        `yaml:"name"`
	Pattern string        `yaml:"pattern"`
	Config  PartialConfig `yaml:"config"`
}

// RuleSet is a set of configuration rules.
// If multiple rules match a file path, they are applied in order.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

func (rs *RuleSet) Validate() error {
	for _, rule := range rs.Rules {
		err := rule.Config.Validate()
		if err != nil {
			msg := fmt.Sprintf("Validation error in config rule %s", rule.Name)
			return errors.Wrapf(err, msg)
		}
	}
	return nil
}

// ConfigForPath returns a configuration for a specific input file path.
// Rules that match the path are applied in order to produce the
// configuration, so a later matching rule overrides an earlier one.
func (rs *RuleSet) ConfigForPath(path string) Config {
	config := DefaultConfig()
	for _, rule := range rs.Rules {
		if GlobMatch(rule.Pattern, path) {
			log.Printf("Applying config rule '%s' with pattern '%s' for path '%s'\n", rule.Name, rule.Pattern, path)
			config.Apply(rule.Config)
		}
	}
	return config
}
