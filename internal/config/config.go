// Package config holds the game configuration: a YAML file with environment
// variable overrides, so containerized runs can tweak single values without
// editing the file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	MapPath     string `yaml:"map_path"`

	Backend BackendConfig `yaml:"backend"`
	Redis   RedisConfig   `yaml:"redis"`
}

// BackendConfig points at the text-generation backend.
type BackendConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`

	// Temperature applies to narrative generation; action resolution always
	// samples greedily.
	Temperature float64 `yaml:"temperature"`
}

// RedisConfig configures session snapshot storage.
type RedisConfig struct {
	Addr       string   `yaml:"addr"`
	SessionTTL Duration `yaml:"session_ttl"`
}

// Duration decodes YAML duration strings like "24h" or "90s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment: "development",
		LogLevel:    "info",
		MapPath:     "assets/map.json",
		Backend: BackendConfig{
			URL:         "http://localhost:11434",
			Model:       "llama3.2",
			Temperature: 0.8,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			SessionTTL: Duration(24 * time.Hour),
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty), and environment variable overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer func() { _ = f.Close() }()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: decode %q: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.MapPath = getEnv("MAP_PATH", c.MapPath)
	c.Backend.URL = getEnv("OLLAMA_URL", c.Backend.URL)
	c.Backend.Model = getEnv("MODEL_NAME", c.Backend.Model)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)

	if v := os.Getenv("TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			c.Backend.Temperature = t
		}
	}
}

// SlogLevel converts the configured log level to a slog.Level, defaulting
// to info for unknown values.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
