// Package config loads process configuration for the stattrack CLI.
//
// Precedence (low -> high): built-in defaults, an optional YAML file
// named by STATTRACK_CONFIG, then STATTRACK_-prefixed environment
// variables.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains process configuration.
type Config struct {
	// DataDir is the directory holding one subdirectory per namespace.
	DataDir string `koanf:"data_dir"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:  "data",
		LogLevel: "info",
	}
}

// Load builds a Config by layering defaults, optional file, and env
// vars.
func Load() (*Config, error) {
	base := Default()

	k := koanf.New(".")

	if path := os.Getenv("STATTRACK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: STATTRACK_DATA_DIR, STATTRACK_LOG_LEVEL.
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("STATTRACK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "stattrack_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.DataDir == "" {
		return nil, errors.New("data_dir must not be empty")
	}
	return &cfg, nil
}
