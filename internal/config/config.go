// Package config loads fitrack's TOML settings and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the file.
const (
	EnvStatePath  = "FITRACK_STATE_PATH"
	EnvDaemonAddr = "FITRACK_DAEMON_ADDR"
	EnvCurrency   = "FITRACK_CURRENCY"
)

// Config holds all fitrack configuration.
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Notifications NotificationsConfig `toml:"notifications"`
	Appearance    AppearanceConfig    `toml:"appearance"`
	Daemon        DaemonConfig        `toml:"daemon"`
}

// GeneralConfig holds engine settings.
type GeneralConfig struct {
	StatePath       string `toml:"state_path,omitempty"`
	TickIntervalMS  int    `toml:"tick_interval_ms"`
	SaveThrottleSec int    `toml:"save_throttle_sec"`
}

// NotificationsConfig controls where notifications go.
type NotificationsConfig struct {
	Enabled bool `toml:"enabled"`
	// Command is an external notifier, e.g. ["notify-send", "{title}", "{body}"].
	Command           []string `toml:"command"`
	DailyReminderHour int      `toml:"daily_reminder_hour"`
}

// AppearanceConfig holds theme and money formatting settings.
type AppearanceConfig struct {
	Theme    string `toml:"theme"`
	Currency string `toml:"currency"`
}

// DaemonConfig holds the background service settings.
type DaemonConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			TickIntervalMS:  1000,
			SaveThrottleSec: 5,
		},
		Notifications: NotificationsConfig{
			Enabled:           true,
			Command:           []string{},
			DailyReminderHour: -1,
		},
		Appearance: AppearanceConfig{
			Theme:    "flexoki-dark",
			Currency: "brl",
		},
		Daemon: DaemonConfig{
			Addr: "127.0.0.1:8788",
		},
	}
}

// TickInterval returns the tick period.
func (c Config) TickInterval() time.Duration {
	if c.General.TickIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(c.General.TickIntervalMS) * time.Millisecond
}

// SaveThrottle returns the minimum gap between throttled writes.
func (c Config) SaveThrottle() time.Duration {
	if c.General.SaveThrottleSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.General.SaveThrottleSec) * time.Second
}

// ResolvedStatePath returns the state database path, falling back to the
// XDG data directory.
func (c Config) ResolvedStatePath() string {
	if c.General.StatePath != "" {
		return expandHome(c.General.StatePath)
	}
	return filepath.Join(DataDir(), "state.db")
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fitrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fitrack")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fitrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fitrack")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies environment overrides.
func Load() (Config, error) {
	cfg, err := LoadFile(ConfigPath())
	if err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadFile reads one TOML file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's config file
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// ApplyEnv overlays FITRACK_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvStatePath)); v != "" {
		cfg.General.StatePath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDaemonAddr)); v != "" {
		cfg.Daemon.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCurrency)); v != "" {
		cfg.Appearance.Currency = strings.ToLower(v)
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
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

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
