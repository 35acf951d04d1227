// Package config loads griffon settings from the environment, an optional .env file and an optional
// YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything needed to open sessions and run a query
type Config struct {
	RegistryURL   string        `mapstructure:"corgi_server_url"`
	CommunityURL  string        `mapstructure:"community_components_server_url"`
	IncidentURL   string        `mapstructure:"osidb_server_url"`
	RegistryToken string        `mapstructure:"corgi_token"`
	IncidentToken string        `mapstructure:"osidb_token"`
	Insecure      bool          `mapstructure:"insecure"`
	Retries       int           `mapstructure:"retries"`
	Workers       int           `mapstructure:"workers"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Format        string        `mapstructure:"format"`
	LogLevel      string        `mapstructure:"log_level"`
	Plugins       []string      `mapstructure:"plugins"`
}

// envBindings maps config keys to the environment variables that feed them
var envBindings = map[string]string{
	"corgi_server_url":                "CORGI_SERVER_URL",
	"community_components_server_url": "COMMUNITY_COMPONENTS_SERVER_URL",
	"osidb_server_url":                "OSIDB_SERVER_URL",
	"corgi_token":                     "CORGI_TOKEN",
	"osidb_token":                     "OSIDB_TOKEN",
	"insecure":                        "GRIFFON_INSECURE",
	"retries":                         "GRIFFON_RETRIES",
	"workers":                         "GRIFFON_WORKERS",
	"timeout":                         "GRIFFON_TIMEOUT",
	"format":                          "GRIFFON_FORMAT",
	"log_level":                       "GRIFFON_LOG_LEVEL",
	"plugins":                         "GRIFFON_PLUGINS",
}

// DefaultPath is where griffon looks for its config file when none is given
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "griffon", "griffon.yml")
}

// Load builds a fresh Config. An explicit path must exist; the default path is optional.
func Load(path string) (*Config, error) {
	// a missing .env is normal
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("workers", 8)
	v.SetDefault("retries", 0)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("format", "json")
	v.SetDefault("log_level", "info")
	v.SetDefault("insecure", false)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else if def := DefaultPath(); def != "" {
		v.SetConfigFile(def)
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("reading config file %s: %w", def, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Plugins = splitList(cfg.Plugins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail much later
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	switch c.Format {
	case "json", "yaml", "table":
	default:
		return fmt.Errorf("unknown output format %q", c.Format)
	}
	return nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, os.ErrNotExist)
}

// splitList accepts both YAML lists and comma separated env values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
