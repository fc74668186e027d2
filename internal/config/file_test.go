package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	if cfg.Scheduler.WindowStart != 6 {
		t.Errorf("expected defaults, got WindowStart = %d", cfg.Scheduler.WindowStart)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
data_file = "/srv/reminders.json"

[scheduler]
window_start = 8
window_end = 20
tick_interval = "15m"

[notify]
app_name = "Remindly"
timeout = "5s"
backend = "none"

[storage]
history_limit = 50
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataFile != "/srv/reminders.json" {
		t.Errorf("expected DataFile from file, got %s", cfg.DataFile)
	}
	if cfg.Scheduler.WindowStart != 8 || cfg.Scheduler.WindowEnd != 20 {
		t.Errorf("expected window 8-20, got %d-%d", cfg.Scheduler.WindowStart, cfg.Scheduler.WindowEnd)
	}
	if cfg.Scheduler.TickInterval != 15*time.Minute {
		t.Errorf("expected TickInterval = 15m, got %v", cfg.Scheduler.TickInterval)
	}
	if cfg.Scheduler.StartupDelay != time.Second {
		t.Errorf("expected untouched StartupDelay = 1s, got %v", cfg.Scheduler.StartupDelay)
	}
	if cfg.Notify.AppName != "Remindly" || cfg.Notify.Backend != BackendNone {
		t.Errorf("unexpected notify config: %+v", cfg.Notify)
	}
	if cfg.Notify.Timeout != 5*time.Second {
		t.Errorf("expected Notify.Timeout = 5s, got %v", cfg.Notify.Timeout)
	}
	if cfg.Storage.HistoryLimit != 50 {
		t.Errorf("expected HistoryLimit = 50, got %d", cfg.Storage.HistoryLimit)
	}
	if cfg.SourceOf("scheduler.window_start") != SourceFile {
		t.Errorf("expected window_start source = config file, got %s", cfg.SourceOf("scheduler.window_start"))
	}
}

func TestLoadFileZeroMinFreeSpace(t *testing.T) {
	path := writeConfig(t, `
[storage]
min_free_space = 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.MinFreeSpace != 0 {
		t.Errorf("expected MinFreeSpace = 0 to disable the check, got %d", cfg.Storage.MinFreeSpace)
	}
	if cfg.SourceOf("storage.min_free_space") != SourceFile {
		t.Errorf("expected source %q, got %q", SourceFile, cfg.SourceOf("storage.min_free_space"))
	}
}

func TestLoadFileOmittedMinFreeSpaceKeepsDefault(t *testing.T) {
	path := writeConfig(t, `
[storage]
history_limit = 10
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.MinFreeSpace != DefaultRuntimeConfig().Storage.MinFreeSpace {
		t.Errorf("expected default MinFreeSpace, got %d", cfg.Storage.MinFreeSpace)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[scheduler]\ntick_interval = \"15m\"\n")
	t.Setenv("REMINDLY_TICK_INTERVAL", "2h")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scheduler.TickInterval != 2*time.Hour {
		t.Errorf("expected env to win with 2h, got %v", cfg.Scheduler.TickInterval)
	}
	if cfg.SourceOf("scheduler.tick_interval") != SourceEnv {
		t.Errorf("expected source = environment, got %s", cfg.SourceOf("scheduler.tick_interval"))
	}
}

func TestLoadInvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "data_file = ", "config"},
		{"unknown_key", "colour = \"red\"\n", "unknown keys"},
		{"bad_duration", "[notify]\ntimeout = \"soon\"\n", "notify.timeout"},
		{"inverted_window", "[scheduler]\nwindow_start = 18\nwindow_end = 6\n", "window_start"},
		{"bad_backend", "[notify]\nbackend = \"pigeon\"\n", "notify.backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestKeysHaveValues(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	for _, key := range Keys() {
		if cfg.Value(key) == "" {
			t.Errorf("key %s has no display value", key)
		}
	}
}
