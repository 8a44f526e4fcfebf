// Package config handles configuration for the data-access layer,
// including defaults, an optional .env overlay, and environment variables.
// The resulting Config is resolved once at startup and treated as immutable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings needed to reach the document store.
//
// Fields:
//   - MongoURI: connection string for the MongoDB deployment.
//   - Database: name of the database holding users, sessions and comments.
//   - ConnectTimeout: cap on the initial connect + ping.
//   - MaxPoolSize: driver connection pool size, 0 means driver default.
//
// Repository operations themselves carry no timeouts; cancellation is the
// caller's responsibility via context.
type Config struct {
	MongoURI       string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// LoadDefaults populates Config with local development defaults.
func (c *Config) LoadDefaults() {
	c.MongoURI = "mongodb://localhost:27017"
	c.Database = "mflix"
	c.ConnectTimeout = 10 * time.Second
	c.MaxPoolSize = 0
}

// Load builds a Config by applying defaults, then overlaying values from an
// optional .env file in the working directory, and finally from the
// environment. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.LoadDefaults()
	if err := cfg.parseEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parseEnv() error {
	if v := os.Getenv("MFLIX_MONGO_URI"); v != "" {
		c.MongoURI = v
	}
	if v := os.Getenv("MFLIX_DATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("MFLIX_CONNECT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing MFLIX_CONNECT_TIMEOUT: %w", err)
		}
		c.ConnectTimeout = d
	}
	if v := os.Getenv("MFLIX_MAX_POOL_SIZE"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing MFLIX_MAX_POOL_SIZE: %w", err)
		}
		c.MaxPoolSize = n
	}
	return nil
}
