package config

import (
	_ "embed"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// UserConfig is the top-level shape of the config file: a RuleSet of
// per-path overrides, a process-wide default locale, and a set of
// extra names to bind onto moonblade's function table.
type UserConfig struct {
	Locale          string
	FunctionAliases map[string]string
	RuleSet         RuleSet
}

// configPath returns the path to the user's config file under
// $XDG_CONFIG_HOME, mirroring the teacher's own use of xdg.ConfigFile
// for exactly this purpose.
func configPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("tabby", "config.yaml"))
}

// LoadOrCreateUserConfig loads the user's config file if it exists,
// and writes the embedded default config to disk otherwise. Passing
// forceDefault true skips the file entirely and returns the embedded
// default in-process, useful for a `-noconfig` style flag.
func LoadOrCreateUserConfig(forceDefault bool) (UserConfig, error) {
	if forceDefault {
		log.Printf("Using default config\n")
		return unmarshalUserConfig(defaultConfigYAML)
	}

	path, err := configPath()
	if err != nil {
		return UserConfig{}, errors.Wrap(err, "resolving config path")
	}

	log.Printf("Loading config from %q\n", path)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("Writing default config to %q\n", path)
		if err := writeDefaultConfig(path); err != nil {
			return UserConfig{}, errors.Wrapf(err, "writing default config to %q", path)
		}
		return unmarshalUserConfig(defaultConfigYAML)
	} else if err != nil {
		return UserConfig{}, errors.Wrapf(err, "loading config from %q", path)
	}

	uc, err := unmarshalUserConfig(data)
	if err != nil {
		return UserConfig{}, err
	}

	if err := uc.RuleSet.Validate(); err != nil {
		return UserConfig{}, errors.Wrapf(err, "invalid configuration at %q", path)
	}

	return uc, nil
}

func unmarshalUserConfig(data []byte) (UserConfig, error) {
	var raw struct {
		Locale          string            `yaml:"locale"`
		FunctionAliases map[string]string `yaml:"functionAliases"`
		Rules           []Rule            `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return UserConfig{}, errors.Wrap(err, "yaml.Unmarshal")
	}
	return UserConfig{
		Locale:          raw.Locale,
		FunctionAliases: raw.FunctionAliases,
		RuleSet:         RuleSet{Rules: raw.Rules},
	}, nil
}

func writeDefaultConfig(path string) error {
	dirPath := filepath.Dir(path)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return errors.Wrap(err, "os.MkdirAll")
	}
	if err := os.WriteFile(path, defaultConfigYAML, 0644); err != nil {
		return errors.Wrap(err, "os.WriteFile")
	}
	return nil
}

// SaveRuleSet saves a rule set to path, preserved for tooling that
// writes out a rule set directly (e.g. a config-editing sub-command)
// rather than the full UserConfig document.
func SaveRuleSet(path string, rs RuleSet) error {
	data, err := yaml.Marshal(rs)
	if err != nil {
		return errors.Wrap(err, "yaml.Marshal")
	}

	dirPath := filepath.Dir(path)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return errors.Wrap(err, "os.MkdirAll")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "os.WriteFile")
	}

	return nil
}

// LoadRuleSet loads a rule set directly from path (without the
// locale/functionAliases wrapper), for the same tooling SaveRuleSet
// serves.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, err
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, errors.Wrap(err, "yaml.Unmarshal")
	}
	return rs, nil
}
