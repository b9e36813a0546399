// Package config loads per-role configuration from environment variables
// (with .env-file convenience for local development), the same
// caarlos0/env + godotenv combination adred-codev-ws_poc's config.go uses:
// ENV vars override a .env file, which overrides the struct tags' own
// defaults.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Info is the info server's configuration.
type Info struct {
	BindAddr    string `env:"SHARDKV_INFO_ADDR" envDefault:"[::1]:8080"`
	WriteShards int    `env:"SHARDKV_WRITE_SHARDS" envDefault:"4"`
	LogLevel    string `env:"SHARDKV_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"SHARDKV_LOG_FORMAT" envDefault:"json"`
	// MetricsAddr is empty by default: metrics are opt-in, started only
	// when this is set to a bind address.
	MetricsAddr string `env:"SHARDKV_METRICS_ADDR" envDefault:""`
}

// Shard is the configuration shared by write and read shards.
type Shard struct {
	BindAddr    string `env:"SHARDKV_SHARD_ADDR" envDefault:"[::1]:0"`
	InfoAddr    string `env:"SHARDKV_INFO_ADDR" envDefault:"[::1]:8080"`
	LogLevel    string `env:"SHARDKV_LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"SHARDKV_LOG_FORMAT" envDefault:"json"`
	// MetricsAddr is empty by default: metrics are opt-in, started only
	// when this is set to a bind address.
	MetricsAddr string `env:"SHARDKV_METRICS_ADDR" envDefault:""`
}

// Client is the interactive client's configuration.
type Client struct {
	InfoAddr  string `env:"SHARDKV_INFO_ADDR" envDefault:"[::1]:8080"`
	LogLevel  string `env:"SHARDKV_LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"SHARDKV_LOG_FORMAT" envDefault:"json"`
}

// Load parses env vars (after an optional .env file) into cfg, which must
// be a pointer to one of the structs above.
func Load(cfg interface{}) error {
	// A missing .env file is fine outside development; only a malformed one
	// is worth surfacing.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("config: reading .env file: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parsing environment: %w", err)
	}
	return nil
}
