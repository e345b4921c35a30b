// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvDev = "dev"

// Config carries everything the server and CLI need to start.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"dev"`
	ServerHost  string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ServerPort  int    `envconfig:"SERVER_PORT" default:"5000"`
	DataDir     string `envconfig:"DATA_DIR"    default:"data"`
	SnapshotDir string `envconfig:"SNAPSHOT_DIR" default:"data/parquet"`
}

// Load reads SETTLEDB_-prefixed environment variables, after loading a .env
// file if one is present.
func Load() (Config, error) {
	// missing .env is fine; real env vars still apply
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("settledb", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Dev reports whether the process runs in the development environment.
func (c Config) Dev() bool {
	return c.Environment == EnvDev
}
