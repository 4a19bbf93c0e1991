// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

// Package config loads and validates service configuration from an optional
// YAML file with command-line flag overrides.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Defaults applied when neither the config file nor flags set a value.
const (
	DefaultListenAddr      = ":8080"
	DefaultMetricsAddr     = ":9090"
	DefaultLogFormat       = "json"
	DefaultTokenAlgorithm  = "HS256"
	DefaultTokenTTLMinutes = 30
)

// Config holds all service configuration.
type Config struct {
	DatabaseURL string     `koanf:"database_url"`
	ListenAddr  string     `koanf:"listen_addr"`
	MetricsAddr string     `koanf:"metrics_addr"`
	LogFormat   string     `koanf:"log_format"`
	Auth        AuthConfig `koanf:"auth"`
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	SecretKey       string `koanf:"secret_key"`
	TokenAlgorithm  string `koanf:"token_algorithm"`
	TokenTTLMinutes int    `koanf:"token_ttl_minutes"`
}

// Default returns a Config populated with defaults. DatabaseURL and
// Auth.SecretKey have no defaults and must be provided.
func Default() *Config {
	return &Config{
		ListenAddr:  DefaultListenAddr,
		MetricsAddr: DefaultMetricsAddr,
		LogFormat:   DefaultLogFormat,
		Auth: AuthConfig{
			TokenAlgorithm:  DefaultTokenAlgorithm,
			TokenTTLMinutes: DefaultTokenTTLMinutes,
		},
	}
}

// Load reads configuration in precedence order: defaults, then the YAML file
// at path (if non-empty), then any flags changed on the given flag set. Flag
// names must match koanf keys ("database_url", "auth.secret_key").
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("source", "flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for missing or invalid values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "database_url").
			Errorf("database_url is required")
	}
	if c.Auth.SecretKey == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "auth.secret_key").
			Errorf("auth.secret_key is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("field", "log_format").
			With("value", c.LogFormat).
			Errorf("log_format must be json or text")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("field", "auth.token_ttl_minutes").
			With("value", c.Auth.TokenTTLMinutes).
			Errorf("auth.token_ttl_minutes must be positive")
	}
	return nil
}

// TokenTTL returns the configured token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}
