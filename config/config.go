package config

import "github.com/tabbyio/tabby/xanerr"

var (
	errDelimiterLength = xanerr.ParseError("delimiter must be exactly one byte")
	errQuoteLength     = xanerr.ParseError("quote must be exactly one byte")
)

// DefaultDelimiter and DefaultQuote match the CSV defaults used when no
// rule or flag overrides them.
const (
	DefaultDelimiter = ","
	DefaultQuote     = "\""
)

// Config is a resolved set of per-path preferences: the delimiter and
// quote byte to parse a matched input with, whether it is headerless,
// and a locale tag for locale-aware string comparison.
type Config struct {
	Delimiter string `yaml:"delimiter"`
	Quote     string `yaml:"quote"`
	NoHeaders bool   `yaml:"noHeaders"`
	Locale    string `yaml:"locale"`
}

// DefaultConfig constructs a configuration with default values.
func DefaultConfig() Config {
	return Config{
		Delimiter: DefaultDelimiter,
		Quote:     DefaultQuote,
		NoHeaders: false,
		Locale:    "",
	}
}

// PartialConfig holds the same fields as Config, but as pointers so a
// rule can override only the fields it names, leaving the rest of the
// base config untouched.
type PartialConfig struct {
	Delimiter *string `yaml:"delimiter,omitempty"`
	Quote     *string `yaml:"quote,omitempty"`
	NoHeaders *bool   `yaml:"noHeaders,omitempty"`
	Locale    *string `yaml:"locale,omitempty"`
}

// Validate reports whether overlay is usable: a delimiter or quote
// string, if set, must be exactly one byte (matching the CSV reader's
// single-byte delimiter/quote contract in record.Reader).
func (p PartialConfig) Validate() error {
	if p.Delimiter != nil && len(*p.Delimiter) != 1 {
		return errDelimiterLength
	}
	if p.Quote != nil && len(*p.Quote) != 1 {
		return errQuoteLength
	}
	return nil
}

// Apply overrides c's fields with any field overlay sets.
func (c *Config) Apply(overlay PartialConfig) {
	if overlay.Delimiter != nil {
		c.Delimiter = *overlay.Delimiter
	}
	if overlay.Quote != nil {
		c.Quote = *overlay.Quote
	}
	if overlay.NoHeaders != nil {
		c.NoHeaders = *overlay.NoHeaders
	}
	if overlay.Locale != nil {
		c.Locale = *overlay.Locale
	}
}
