// Package config loads the optional sixfiveasm.toml configuration
// file: default origin, default fillvalue, and extra include search
// paths. Absence of the file is not an error — the zero-value
// defaults below apply. The command-line tool has no flags for these
// fields; the config file is their only source.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// AssembleConfig mirrors the [assemble] table of the config file.
type AssembleConfig struct {
	Origin       int      `toml:"origin"`
	Fillvalue    int      `toml:"fillvalue"`
	IncludePaths []string `toml:"include_paths"`
}

// Config is the root of the TOML document.
type Config struct {
	Assemble AssembleConfig `toml:"assemble"`
}

// DefaultFileName is the config file Load looks for in the working
// directory when no explicit --config path is given.
const DefaultFileName = "sixfiveasm.toml"

// Default returns the configuration used when no config file is
// present: origin 0, fillvalue $00, no extra include search paths.
func Default() Config {
	return Config{Assemble: AssembleConfig{Origin: 0, Fillvalue: 0x00}}
}

// Load reads path and decodes it over the defaults. When path is
// empty, Load falls back to DefaultFileName in the working directory
// rather than skipping config loading outright. A missing file at
// either location is not an error: Load silently returns Default() so
// callers never need to special-case "no config file was given".
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFileName
	}

	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	return cfg, nil
}
