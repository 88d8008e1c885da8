package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvStatePath, "")
	t.Setenv(EnvDaemonAddr, "")
	t.Setenv(EnvCurrency, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TickInterval() != time.Second {
		t.Fatalf("tick interval = %s, want 1s", cfg.TickInterval())
	}
	if cfg.SaveThrottle() != 5*time.Second {
		t.Fatalf("save throttle = %s, want 5s", cfg.SaveThrottle())
	}
	if cfg.Notifications.DailyReminderHour != -1 || !cfg.Notifications.Enabled {
		t.Fatalf("unexpected notification defaults: %+v", cfg.Notifications)
	}
	if cfg.Appearance.Currency != "brl" || cfg.Daemon.Addr != "127.0.0.1:8788" {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Appearance, cfg.Daemon)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvStatePath, "")
	t.Setenv(EnvDaemonAddr, "")
	t.Setenv(EnvCurrency, "")

	cfg := DefaultConfig()
	cfg.General.TickIntervalMS = 250
	cfg.Notifications.Command = []string{"notify-send", "{title}", "{body}"}
	cfg.Notifications.DailyReminderHour = 9
	cfg.Appearance.Currency = "usd"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("config file not written")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TickInterval() != 250*time.Millisecond {
		t.Fatalf("tick interval = %s", got.TickInterval())
	}
	if len(got.Notifications.Command) != 3 || got.Notifications.DailyReminderHour != 9 {
		t.Fatalf("notifications = %+v", got.Notifications)
	}
	if got.Appearance.Currency != "usd" {
		t.Fatalf("currency = %q", got.Appearance.Currency)
	}
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[daemon]\naddr = \"127.0.0.1:9999\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Daemon.Addr != "127.0.0.1:9999" {
		t.Fatalf("addr = %q", cfg.Daemon.Addr)
	}
	if cfg.General.SaveThrottleSec != 5 || cfg.Appearance.Theme != "flexoki-dark" {
		t.Fatalf("defaults lost: %+v %+v", cfg.General, cfg.Appearance)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvStatePath, "/tmp/fitrack-test/state.db")
	t.Setenv(EnvDaemonAddr, "0.0.0.0:1")
	t.Setenv(EnvCurrency, "EUR")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	if cfg.ResolvedStatePath() != "/tmp/fitrack-test/state.db" {
		t.Fatalf("state path = %q", cfg.ResolvedStatePath())
	}
	if cfg.Daemon.Addr != "0.0.0.0:1" || cfg.Appearance.Currency != "eur" {
		t.Fatalf("env not applied: %+v %+v", cfg.Daemon, cfg.Appearance)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, "test.env")
	if err := os.WriteFile(env, []byte("FITRACK_CURRENCY=usd\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvCurrency, "")
	os.Unsetenv(EnvCurrency)

	if err := LoadDotEnv(env, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(EnvCurrency); got != "usd" {
		t.Fatalf("FITRACK_CURRENCY = %q", got)
	}
}

func TestResolvedStatePath_Default(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	cfg := DefaultConfig()
	if got := cfg.ResolvedStatePath(); got != "/tmp/xdg-data/fitrack/state.db" {
		t.Fatalf("state path = %q", got)
	}
}
