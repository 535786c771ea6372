// Package config loads process configuration from the environment.
//
// Components declare env-tagged config structs next to the code they
// configure; this package only owns the parsing and fatal-exit helpers so
// business logic never reaches into the environment directly.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
