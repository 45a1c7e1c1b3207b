// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

// Package config loads server configuration from an optional YAML file
// and command-line flags, flags winning.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the full server configuration.
type Config struct {
	Log      Log      `koanf:"log"`
	Database Database `koanf:"database"`
	Metrics  Metrics  `koanf:"metrics"`
	Session  Session  `koanf:"session"`
}

// Log configures the structured logger.
type Log struct {
	// Format is "json" or "text".
	Format string `koanf:"format"`
}

// Database configures the PostgreSQL connection.
type Database struct {
	URL string `koanf:"url"`
}

// Metrics configures the observability endpoint.
type Metrics struct {
	// Addr is the listen address; empty disables the server.
	Addr string `koanf:"addr"`
}

// Session configures session lifetimes and the expiry sweep.
type Session struct {
	SlidingTTL    time.Duration `koanf:"sliding-ttl"`
	RememberTTL   time.Duration `koanf:"remember-ttl"`
	SweepInterval time.Duration `koanf:"sweep-interval"`
}

// RegisterFlags declares every config key on the flag set with its
// default value. The flag names double as koanf keys.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("log.format", "json", "log format (json or text)")
	f.String("database.url", "", "PostgreSQL connection URL (falls back to DATABASE_URL)")
	f.String("metrics.addr", "127.0.0.1:9400", "metrics/health HTTP address (empty = disabled)")
	f.Duration("session.sliding-ttl", 30*24*time.Hour, "inactivity window for default sessions")
	f.Duration("session.remember-ttl", 30*24*time.Hour, "absolute lifetime of remember-me sessions")
	f.Duration("session.sweep-interval", 120*time.Second, "expired-session sweep interval")
}

// Load merges the optional YAML file and the flag set into a Config.
// configFile may be empty.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", configFile).
				Wrap(err)
		}
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}

	return &cfg, cfg.Validate()
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if c.Session.SlidingTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session.sliding-ttl must be positive")
	}
	if c.Session.RememberTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session.remember-ttl must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session.sweep-interval must be positive")
	}
	return nil
}
