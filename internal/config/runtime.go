// Package config provides centralized configuration for Remindly runtime values.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "remindly"

// Notification backends.
const (
	BackendAuto       = "auto"
	BackendNotifySend = "notify-send"
	BackendBeeep      = "beeep"
	BackendNone       = "none"
)

// RuntimeConfig holds all runtime configuration values.
type RuntimeConfig struct {
	// DataFile is the path of the reminder document.
	// Default: $XDG_DATA_HOME/remindly/reminders.json
	DataFile string

	// Scheduler configuration
	Scheduler SchedulerConfig

	// Notification configuration
	Notify NotifyConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Storage configuration
	Storage StorageConfig

	// Sources records where each non-default value came from, keyed by
	// its TOML name.
	Sources map[string]Source
}

// SchedulerConfig holds scheduler-related configuration.
type SchedulerConfig struct {
	// WindowStart is the first hour of the daytime window.
	// Default: 6
	WindowStart int

	// WindowEnd is the hour at which the window closes. Draws may land on
	// this hour itself.
	// Default: 18
	WindowEnd int

	// TickInterval is how often the daily scheduler is ticked.
	// Default: 1h
	TickInterval time.Duration

	// StartupDelay is the wait before the specific-date check runs.
	// Default: 1s
	StartupDelay time.Duration
}

// NotifyConfig holds desktop notification configuration.
type NotifyConfig struct {
	// AppName is the application name shown by the notification server.
	// Default: ReminderApp
	AppName string

	// Timeout is how long a notification stays on screen.
	// Default: 10s
	Timeout time.Duration

	// Backend selects the delivery mechanism: auto, notify-send, beeep or none.
	// Default: auto
	Backend string
}

// DaemonConfig holds daemon-related configuration.
type DaemonConfig struct {
	// StartupWait is the time to wait for the daemon to start before checking status.
	// Default: 500ms
	StartupWait time.Duration

	// KillTimeout is the timeout for graceful shutdown before force kill.
	// Default: 5s
	KillTimeout time.Duration

	// LogMaxSize is the size at which daemon.log is rotated.
	// Default: 10MB
	LogMaxSize int64
}

// StorageConfig holds storage-related configuration.
type StorageConfig struct {
	// MinFreeSpace is the minimum free space required for write operations.
	// Default: 1MB
	MinFreeSpace uint64

	// HistoryLimit is the default number of entries shown by history.
	// Default: 20
	HistoryLimit int
}

// DefaultDataFile returns the default reminder document path.
func DefaultDataFile() string {
	return filepath.Join(xdg.DataHome, AppName, "reminders.json")
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		DataFile: DefaultDataFile(),
		Scheduler: SchedulerConfig{
			WindowStart:  6,
			WindowEnd:    18,
			TickInterval: time.Hour,
			StartupDelay: time.Second,
		},
		Notify: NotifyConfig{
			AppName: "ReminderApp",
			Timeout: 10 * time.Second,
			Backend: BackendAuto,
		},
		Daemon: DaemonConfig{
			StartupWait: 500 * time.Millisecond,
			KillTimeout: 5 * time.Second,
			LogMaxSize:  10 * 1024 * 1024,
		},
		Storage: StorageConfig{
			MinFreeSpace: 1024 * 1024,
			HistoryLimit: 20,
		},
		Sources: make(map[string]Source),
	}
}

// Global holds the global runtime configuration instance.
// It is initialized with defaults and environment overrides; the root
// command replaces it with the result of Load once flags are parsed.
var Global = initGlobal()

func initGlobal() *RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()
	return cfg
}

// loadFromEnv loads configuration overrides from REMINDLY_* environment variables.
func (c *RuntimeConfig) loadFromEnv() {
	if v := os.Getenv("REMINDLY_FILE"); v != "" {
		c.DataFile = expandHome(v)
		c.markSource("data_file", SourceEnv)
	}

	// Scheduler configuration
	if v := os.Getenv("REMINDLY_WINDOW_START"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scheduler.WindowStart = n
			c.markSource("scheduler.window_start", SourceEnv)
		}
	}
	if v := os.Getenv("REMINDLY_WINDOW_END"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scheduler.WindowEnd = n
			c.markSource("scheduler.window_end", SourceEnv)
		}
	}
	if v := os.Getenv("REMINDLY_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Scheduler.TickInterval = d
			c.markSource("scheduler.tick_interval", SourceEnv)
		}
	}
	if v := os.Getenv("REMINDLY_STARTUP_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Scheduler.StartupDelay = d
			c.markSource("scheduler.startup_delay", SourceEnv)
		}
	}

	// Notification configuration
	if v := os.Getenv("REMINDLY_NOTIFY_APP_NAME"); v != "" {
		c.Notify.AppName = v
		c.markSource("notify.app_name", SourceEnv)
	}
	if v := os.Getenv("REMINDLY_NOTIFY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Notify.Timeout = d
			c.markSource("notify.timeout", SourceEnv)
		}
	}
	if v := os.Getenv("REMINDLY_NOTIFY_BACKEND"); v != "" {
		c.Notify.Backend = strings.ToLower(strings.TrimSpace(v))
		c.markSource("notify.backend", SourceEnv)
	}

	// Daemon configuration
	if v := os.Getenv("REMINDLY_DAEMON_STARTUP_WAIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Daemon.StartupWait = d
			c.markSource("daemon.startup_wait", SourceEnv)
		}
	}
	if v := os.Getenv("REMINDLY_DAEMON_KILL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Daemon.KillTimeout = d
			c.markSource("daemon.kill_timeout", SourceEnv)
		}
	}

	// Storage configuration
	if v := os.Getenv("REMINDLY_MIN_FREE_SPACE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Storage.MinFreeSpace = n
			c.markSource("storage.min_free_space", SourceEnv)
		}
	}
}

func (c *RuntimeConfig) markSource(key string, src Source) {
	if c.Sources == nil {
		c.Sources = make(map[string]Source)
	}
	c.Sources[key] = src
}

// SourceOf reports where the value for key came from.
func (c *RuntimeConfig) SourceOf(key string) Source {
	if src, ok := c.Sources[key]; ok {
		return src
	}
	return SourceDefault
}

// ReloadFromEnv reloads configuration from environment variables.
func (c *RuntimeConfig) ReloadFromEnv() {
	c.loadFromEnv()
}

// Reset resets the configuration to defaults.
// This is primarily useful for testing.
func (c *RuntimeConfig) Reset() {
	defaults := DefaultRuntimeConfig()
	*c = *defaults
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
