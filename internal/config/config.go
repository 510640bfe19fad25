package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const envPrefix = "FORMFLOW_"

// Config holds the server settings. Values come from an optional YAML file
// and are then overridden by FORMFLOW_* environment variables.
type Config struct {
	HTTPAddr       string         `yaml:"httpAddr"`
	LogMode        string         `yaml:"logMode"`
	CatalogDir     string         `yaml:"catalogDir"`
	SanitizeValues bool           `yaml:"sanitizeValues"`
	CORSOrigins    []string       `yaml:"corsOrigins"`
	Database       DatabaseConfig `yaml:"database"`
}

// DatabaseConfig selects the gorm dialect and connection string.
type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		HTTPAddr:       ":8080",
		LogMode:        "dev",
		SanitizeValues: true,
		Database: DatabaseConfig{
			Driver:      "sqlite",
			DSN:         "formflow.db",
			AutoMigrate: true,
		},
	}
}

// Load reads path (when non-empty) over the defaults, then applies the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unusable settings.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database dsn is required")
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("config: httpAddr is required")
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(envPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", envPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("HTTP_ADDR", &c.HTTPAddr)
	str("LOG_MODE", &c.LogMode)
	str("CATALOG_DIR", &c.CatalogDir)
	str("DB_DRIVER", &c.Database.Driver)
	str("DB_DSN", &c.Database.DSN)
	if v, ok := lookup(envPrefix + "CORS_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		c.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}
	if err := boolean("SANITIZE_VALUES", &c.SanitizeValues); err != nil {
		return err
	}
	return boolean("DB_AUTO_MIGRATE", &c.Database.AutoMigrate)
}
