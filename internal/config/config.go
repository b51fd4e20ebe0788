// Package config loads and saves the countdown YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// HomeEnv overrides the configuration directory.
const HomeEnv = "COUNTDOWN_HOME"

// Storage drivers.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// NotificationsConfig controls the reminder spool.
type NotificationsConfig struct {
	// Enabled mirrors notification authorization. When false, reminders are
	// still cancelled but never scheduled.
	Enabled bool `yaml:"enabled"`
	// MorningHour is the local hour of the morning-of reminder (0-23).
	MorningHour int `yaml:"morning_hour"`
}

// WidgetConfig controls the widget surfaces.
type WidgetConfig struct {
	MaxLength int `yaml:"max_length"`
	// ConfiguredEvent is the event id pinned by the widget when the
	// selection policy is fixedByWidget.
	ConfiguredEvent string `yaml:"configured_event,omitempty"`
}

// WatchConfig controls the watch daemon.
type WatchConfig struct {
	// Schedule is a cron expression (seconds field optional).
	Schedule      string `yaml:"schedule"`
	MetricsListen string `yaml:"metrics_listen"`
}

// EntitlementConfig holds the offline pro receipt.
type EntitlementConfig struct {
	PublicKey string `yaml:"public_key,omitempty"`
	Receipt   string `yaml:"receipt,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	DataDir       string              `yaml:"data_dir"`
	Storage       string              `yaml:"storage"`
	Locale        string              `yaml:"locale"`
	Timezone      string              `yaml:"timezone"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Widget        WidgetConfig        `yaml:"widget"`
	Watch         WatchConfig         `yaml:"watch"`
	Entitlement   EntitlementConfig   `yaml:"entitlement"`
}

// Dir returns the configuration directory: $COUNTDOWN_HOME or ~/.config/countdown.
func Dir() string {
	if d := os.Getenv(HomeEnv); d != "" {
		return d
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "countdown")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// LoadEnv reads a .env file next to the config, if present.
// Existing environment variables win.
func LoadEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:  Dir(),
		Storage:  StorageJSON,
		Locale:   "en",
		Timezone: "Local",
		Notifications: NotificationsConfig{
			Enabled:     true,
			MorningHour: 8,
		},
		Widget: WidgetConfig{MaxLength: 20},
		Watch: WatchConfig{
			Schedule:      "* * * * *",
			MetricsListen: "127.0.0.1:9464",
		},
	}
}

// Normalize fills in missing or invalid values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	switch c.Storage {
	case StorageJSON, StorageSQLite:
	default:
		c.Storage = StorageJSON
	}
	switch c.Locale {
	case "en", "ja":
	default:
		c.Locale = "en"
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Notifications.MorningHour < 0 || c.Notifications.MorningHour > 23 {
		c.Notifications.MorningHour = def.Notifications.MorningHour
	}
	if c.Widget.MaxLength <= 0 {
		c.Widget.MaxLength = def.Widget.MaxLength
	}
	if c.Watch.Schedule == "" {
		c.Watch.Schedule = def.Watch.Schedule
	}
	if c.Watch.MetricsListen == "" {
		c.Watch.MetricsListen = def.Watch.MetricsListen
	}
}

// Environment overrides, typically set through .env.
const (
	EnvStorage   = "COUNTDOWN_STORAGE"
	EnvLocale    = "COUNTDOWN_LOCALE"
	EnvTimezone  = "COUNTDOWN_TZ"
	EnvPublicKey = "COUNTDOWN_RECEIPT_PUBLIC_KEY"
	EnvReceipt   = "COUNTDOWN_RECEIPT"
)

// ApplyEnv overlays non-empty environment overrides and normalizes again.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Storage, EnvStorage)
	set(&c.Locale, EnvLocale)
	set(&c.Timezone, EnvTimezone)
	set(&c.Entitlement.PublicKey, EnvPublicKey)
	set(&c.Entitlement.Receipt, EnvReceipt)
	c.Normalize()
}

// Location resolves Timezone. Unknown zones fall back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads the YAML config at path. On first run the default config is
// written to path and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	// Start from defaults so a partial file keeps booleans like
	// notifications.enabled at their default.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file in the same directory and
// renames it over path. The parent directory is created with 0700.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".countdown-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
