// Package config parses configuration out of the process environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg, a pointer to a struct with `env` tags, from environment
// variables.
//
//	type Config struct {
//	    HTTPPort       int    `env:"HTTP_PORT" envDefault:"8080"`
//	    StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
