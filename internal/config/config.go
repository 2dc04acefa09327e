// Package config loads and saves the runway TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	_ "time/tzdata" // embed zone data for the default Africa/Nairobi timezone

	"github.com/theirongolddev/runway/internal/model"
)

// DefaultThreshold is the low-balance alert floor in shillings.
const DefaultThreshold = 5000

// Config holds all runway configuration.
type Config struct {
	General    GeneralConfig             `toml:"general"`
	Business   BusinessConfig            `toml:"business"`
	Database   DatabaseConfig            `toml:"database"`
	Daemon     DaemonConfig              `toml:"daemon"`
	Appearance AppearanceConfig          `toml:"appearance"`
	Log        LogConfig                 `toml:"log"`
	Categories map[string]CategoryConfig `toml:"categories,omitempty"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultDays int    `toml:"default_days"`
	DataDir     string `toml:"data_dir,omitempty"`
	Timezone    string `toml:"timezone"`
}

// BusinessConfig describes the business whose runway is tracked.
type BusinessConfig struct {
	Name                string `toml:"name,omitempty"`
	TillNumber          string `toml:"till_number,omitempty"`
	Currency            string `toml:"currency"`
	LowBalanceThreshold int64  `toml:"low_balance_threshold"`
	OpeningBalance      int64  `toml:"opening_balance"`
}

// DatabaseConfig points at the dashboard's Postgres database.
type DatabaseConfig struct {
	URL    string `toml:"url,omitempty"`
	UserID string `toml:"user_id,omitempty"`
}

// DaemonConfig holds the background service settings.
type DaemonConfig struct {
	Addr     string `toml:"addr"`
	Interval string `toml:"interval"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// CategoryConfig is a display label for one category id.
type CategoryConfig struct {
	Name  string `toml:"name"`
	Color string `toml:"color,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultDays: 30,
			Timezone:    "Africa/Nairobi",
		},
		Business: BusinessConfig{
			Currency:            "KES",
			LowBalanceThreshold: DefaultThreshold,
		},
		Daemon: DaemonConfig{
			Addr:     "127.0.0.1:8765",
			Interval: "30s",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "runway")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultDataDir is where statements are read from when nothing else is set.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".runway", "statements")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("RUNWAY_THRESHOLD"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("RUNWAY_THRESHOLD: %w", err)
		}
		cfg.Business.LowBalanceThreshold = n
	}
	if v := os.Getenv("RUNWAY_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	return nil
}

// Validate rejects settings the engine cannot use.
func (c Config) Validate() error {
	if c.Business.LowBalanceThreshold < 0 {
		return fmt.Errorf("business.low_balance_threshold must be non-negative, got %d", c.Business.LowBalanceThreshold)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.PollInterval(); err != nil {
		return err
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.General.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.General.Timezone)
	if err != nil {
		return nil, fmt.Errorf("general.timezone: %w", err)
	}
	return loc, nil
}

// PollInterval parses the daemon poll interval.
func (c Config) PollInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Daemon.Interval)
	if err != nil {
		return 0, fmt.Errorf("daemon.interval: %w", err)
	}
	if d < time.Second {
		return 0, fmt.Errorf("daemon.interval must be at least 1s, got %s", d)
	}
	return d, nil
}

// DataDir returns the configured statement directory or the default.
func (c Config) DataDir() string {
	if c.General.DataDir != "" {
		return c.General.DataDir
	}
	return DefaultDataDir()
}

// Category returns the display label for a category id. Unknown ids are
// shown as-is.
func (c Config) Category(id string) model.Category {
	if id == model.Uncategorized {
		return model.Category{ID: id, Name: "Uncategorized", Color: model.UncategorizedColor}
	}
	if cc, ok := c.Categories[id]; ok {
		return model.Category{ID: id, Name: cc.Name, Color: cc.Color}
	}
	return model.Category{ID: id, Name: id}
}
