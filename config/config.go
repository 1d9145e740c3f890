// Package config loads build-time options for the grammar interpretation
// core from a TOML file: arena block size, whether interning is enabled
// by default, and the diagnostic log level.
//
// Grounded on ComedicChimera-chai's src/mods/load.go: a TOML file is
// unmarshalled straight into a struct-tagged Go type via
// github.com/pelletier/go-toml, then validated. This package keeps that
// shape but drops the module/profile/dependency machinery chai needs,
// since this library has nothing resembling a build profile.
package config

import (
	"os"

	"github.com/pelletier/go-toml"

	"github.com/bnfkit/bnfcore"
)

// Options controls how a Grammar is built and how diagnostics are logged.
type Options struct {
	ArenaBlockSize  int    `toml:"arena-block-size"`
	InternByDefault bool   `toml:"intern-by-default"`
	DiagnosticLevel string `toml:"diagnostic-level"`
}

// Default returns the library's built-in option values.
func Default() *Options {
	return &Options{
		ArenaBlockSize:  256,
		InternByDefault: true,
		DiagnosticLevel: "warn",
	}
}

// Load reads and parses a TOML options file at path, starting from
// Default() so that a file overriding only some keys leaves the rest at
// their defaults.
func Load(path string) (*Options, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, bnfcore.FormatError(bnfcore.ConfigErrors, "reading config %s: %s", path, err.Error())
	}

	opts := Default()
	if err := toml.Unmarshal(buf, opts); err != nil {
		return nil, bnfcore.FormatError(bnfcore.ConfigErrors, "parsing config %s: %s", path, err.Error())
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) validate() error {
	if o.ArenaBlockSize <= 0 {
		return bnfcore.FormatError(bnfcore.ConfigErrors, "arena-block-size must be positive, got %d", o.ArenaBlockSize)
	}
	switch o.DiagnosticLevel {
	case "debug", "info", "warn", "error":
	default:
		return bnfcore.FormatError(bnfcore.ConfigErrors, "unknown diagnostic-level %q", o.DiagnosticLevel)
	}
	return nil
}
