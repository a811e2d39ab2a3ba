// Package config loads service settings from an optional YAML file, a .env
// file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverFile     = "file"
	DriverMemory   = "memory"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Reminders RemindersConfig `yaml:"reminders"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port            string `yaml:"port"`
	Timezone        string `yaml:"timezone"`
	SecretKey       string `yaml:"secret_key"`
	DefaultLanguage string `yaml:"default_language"`
	CookieSecure    bool   `yaml:"cookie_secure"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"`
	DBPath      string `yaml:"db_path"`
	DatabaseURL string `yaml:"database_url"`
	DataDir     string `yaml:"data_dir"`
}

type RemindersConfig struct {
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel   string `yaml:"gemini_model"`
	RatePerMinute int    `yaml:"rate_per_minute"`
	Timeout       string `yaml:"timeout"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	Development bool   `yaml:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Timezone:        "UTC",
			DefaultLanguage: "en",
		},
		Store: StoreConfig{
			Driver:  DriverSQLite,
			DBPath:  filepath.Join("data", "waterline.db"),
			DataDir: filepath.Join("data", "installations"),
		},
		Reminders: RemindersConfig{
			RatePerMinute: 3,
			Timeout:       "30s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path when it exists, then applies .env and environment
// overrides. An empty path skips the YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	overrideString(&c.Server.Port, "PORT")
	overrideString(&c.Server.Timezone, "TZ")
	overrideString(&c.Server.SecretKey, "SECRET_KEY")
	overrideString(&c.Server.DefaultLanguage, "DEFAULT_LANGUAGE")
	overrideBool(&c.Server.CookieSecure, "COOKIE_SECURE")

	overrideString(&c.Store.Driver, "STORE_DRIVER")
	overrideString(&c.Store.DBPath, "DB_PATH")
	overrideString(&c.Store.DatabaseURL, "DATABASE_URL")
	overrideString(&c.Store.DataDir, "DATA_DIR")

	overrideString(&c.Reminders.GeminiAPIKey, "GEMINI_API_KEY")
	overrideString(&c.Reminders.GeminiModel, "GEMINI_MODEL")
	if raw := strings.TrimSpace(os.Getenv("REMINDER_RATE_PER_MINUTE")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			c.Reminders.RatePerMinute = value
		}
	}

	overrideString(&c.Logging.Level, "LOG_LEVEL")
	overrideString(&c.Logging.File, "LOG_FILE")
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if _, err := ParsePort(c.Server.Port); err != nil {
		return err
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverFile, DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Reminders.RatePerMinute < 1 {
		return fmt.Errorf("reminder rate must be positive, got %d", c.Reminders.RatePerMinute)
	}
	if _, err := c.ReminderTimeout(); err != nil {
		return err
	}
	return nil
}

// ResolveSecretKey returns the cookie signing key or an error when it is
// missing, a known placeholder or too short.
func (c *Config) ResolveSecretKey() (string, error) {
	secret := strings.TrimSpace(c.Server.SecretKey)
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[secret]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

// Location loads the configured timezone, falling back to UTC.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Server.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid TZ %q: %w", name, err)
	}
	return location, nil
}

func (c *Config) ReminderTimeout() (time.Duration, error) {
	if strings.TrimSpace(c.Reminders.Timeout) == "" {
		return 30 * time.Second, nil
	}
	timeout, err := time.ParseDuration(c.Reminders.Timeout)
	if err != nil || timeout <= 0 {
		return 0, fmt.Errorf("invalid reminder timeout %q", c.Reminders.Timeout)
	}
	return timeout, nil
}

func ParsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid PORT %q: %w", raw, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	return port, nil
}

func overrideString(target *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	}
}

func overrideBool(target *bool, key string) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	if value, err := strconv.ParseBool(raw); err == nil {
		*target = value
	}
}
