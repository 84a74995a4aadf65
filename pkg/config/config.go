package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/kpfaulkner/ledgerstore/pkg/storage"
)

// Config holds the settings shared by the ledgerstore tools.
type Config struct {
	Backend  string `env:"LEDGERSTORE_BACKEND" envDefault:"sqlite"`
	Path     string `env:"LEDGERSTORE_PATH" envDefault:"."`
	LogLevel string `env:"LEDGERSTORE_LOG_LEVEL" envDefault:"info"`
}

// Load reads the config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the backend name.
func (c Config) Validate() error {
	for _, b := range storage.Backends() {
		if strings.EqualFold(c.Backend, b) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (want one of %v)", storage.ErrUnknownBackend, c.Backend, storage.Backends())
}
