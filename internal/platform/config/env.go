// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Prefix namespaces every environment variable read by PWA Edit commands.
const Prefix = "PWA_EDIT_"

// ParseEnv loads configuration from PWA_EDIT_-prefixed environment variables.
//
// Struct tags name the unprefixed key, so `env:"HTTP_ADDR"` reads
// PWA_EDIT_HTTP_ADDR.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: Prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
