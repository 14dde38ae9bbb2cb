// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/dayblocks/internal/task"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	LLM      LLMConfig      `toml:"llm"`
	UI       UIConfig       `toml:"ui"`
}

// ScheduleConfig bounds the part of the day used for free-slot suggestions.
// Blocks themselves may be placed anywhere in the day.
type ScheduleConfig struct {
	DayStart string `toml:"day_start"` // e.g., "08:00"
	DayEnd   string `toml:"day_end"`   // e.g., "20:00"
}

// StorageConfig holds database settings.
type StorageConfig struct {
	Driver        string `toml:"driver"`  // "sqlite", "postgres", "memory"
	DBPath        string `toml:"db_path"` // SQLite file
	DSN           string `toml:"dsn"`     // PostgreSQL connection string
	BusyTimeoutMS int    `toml:"busy_timeout_ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "console" or "json"
	File   string `toml:"file"`   // optional, appended to
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr       string  `toml:"addr"`
	RatePerSec float64 `toml:"rate_per_sec"` // 0 disables rate limiting
	Burst      int     `toml:"burst"`
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider"` // "copilot", "ollama", "lmstudio"
	Model    string `toml:"model"`    // e.g., "gpt-4o"
	BaseURL  string `toml:"base_url"` // e.g., "http://localhost:11434"
}

// UIConfig holds TUI and CLI settings.
type UIConfig struct {
	Theme        string `toml:"theme"`         // "mocha", "macchiato", "frappe", "latte"
	DefaultColor string `toml:"default_color"` // color of new blocks
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			DayStart: "08:00",
			DayEnd:   "20:00",
		},
		Storage: StorageConfig{
			Driver:        "sqlite",
			DBPath:        defaultDBPath(),
			BusyTimeoutMS: 5000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:       "127.0.0.1:8080",
			RatePerSec: 20,
			Burst:      40,
		},
		LLM: LLMConfig{
			Provider: "copilot",
			Model:    "gpt-4o",
			BaseURL:  "http://localhost:11434",
		},
		UI: UIConfig{
			Theme:        "frappe",
			DefaultColor: task.DefaultColor,
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dayblocks.db"
	}
	return filepath.Join(home, ".local", "share", "dayblocks", "dayblocks.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "dayblocks", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
// A .env file in the working directory is loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	// Schedule overrides
	if v := os.Getenv("DAYBLOCKS_DAY_START"); v != "" {
		cfg.Schedule.DayStart = v
	}
	if v := os.Getenv("DAYBLOCKS_DAY_END"); v != "" {
		cfg.Schedule.DayEnd = v
	}

	// Storage overrides
	if v := os.Getenv("DAYBLOCKS_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("DAYBLOCKS_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("DAYBLOCKS_DSN"); v != "" {
		cfg.Storage.DSN = v
	}

	// Log overrides
	if v := os.Getenv("DAYBLOCKS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DAYBLOCKS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("DAYBLOCKS_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	// Server overrides
	if v := os.Getenv("DAYBLOCKS_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DAYBLOCKS_SERVER_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DAYBLOCKS_SERVER_RATE: %w", err)
		}
		cfg.Server.RatePerSec = rate
	}

	// LLM overrides
	if v := os.Getenv("DAYBLOCKS_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("DAYBLOCKS_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("DAYBLOCKS_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	// UI overrides
	if v := os.Getenv("DAYBLOCKS_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validateTime(c.Schedule.DayStart, "day_start"); err != nil {
		return err
	}
	if err := validateTime(c.Schedule.DayEnd, "day_end"); err != nil {
		return err
	}
	if c.Schedule.DayStart >= c.Schedule.DayEnd {
		return errors.New("day_start must be before day_end")
	}

	switch strings.ToLower(c.Storage.Driver) {
	case "", "sqlite":
		if c.Storage.DBPath == "" {
			return errors.New("db_path must be set")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("dsn must be set for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid storage driver: %s", c.Storage.Driver)
	}
	if c.Storage.BusyTimeoutMS < 0 {
		return errors.New("busy_timeout_ms must not be negative")
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log format must be console or json, got %q", c.Log.Format)
	}

	if c.Server.Addr == "" {
		return errors.New("server addr must be set")
	}
	if c.Server.RatePerSec < 0 {
		return errors.New("rate_per_sec must not be negative")
	}
	if c.Server.RatePerSec > 0 && c.Server.Burst < 1 {
		return errors.New("burst must be at least 1 when rate limiting is enabled")
	}

	if err := task.ValidateColor(c.UI.DefaultColor); err != nil {
		return fmt.Errorf("default_color: %w", err)
	}
	return nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if err := task.ValidateTime(t); err != nil {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace":    true,
	"debug":    true,
	"info":     true,
	"warn":     true,
	"warning":  true,
	"error":    true,
	"off":      true,
	"disabled": true,
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
