package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Source represents where a configuration value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "config file"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// fileConfig mirrors the TOML layout of config.toml. Durations are written
// as Go duration strings ("1h", "500ms").
type fileConfig struct {
	DataFile  string        `toml:"data_file"`
	Scheduler fileScheduler `toml:"scheduler"`
	Notify    fileNotify    `toml:"notify"`
	Daemon    fileDaemon    `toml:"daemon"`
	Storage   fileStorage   `toml:"storage"`
}

type fileScheduler struct {
	WindowStart  *int   `toml:"window_start"`
	WindowEnd    *int   `toml:"window_end"`
	TickInterval string `toml:"tick_interval"`
	StartupDelay string `toml:"startup_delay"`
}

type fileNotify struct {
	AppName string `toml:"app_name"`
	Timeout string `toml:"timeout"`
	Backend string `toml:"backend"`
}

type fileDaemon struct {
	StartupWait string `toml:"startup_wait"`
	KillTimeout string `toml:"kill_timeout"`
	LogMaxSize  int64  `toml:"log_max_size"`
}

type fileStorage struct {
	MinFreeSpace uint64 `toml:"min_free_space"`
	HistoryLimit int    `toml:"history_limit"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// Load builds a RuntimeConfig from defaults, the TOML file at path and
// REMINDLY_* environment variables, in that order of precedence. A missing
// file is not an error.
func Load(path string) (*RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFile(path); err != nil {
				return nil, fmt.Errorf("config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *RuntimeConfig) loadFile(path string) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	if fc.DataFile != "" {
		c.DataFile = expandHome(fc.DataFile)
		c.markSource("data_file", SourceFile)
	}

	if fc.Scheduler.WindowStart != nil {
		c.Scheduler.WindowStart = *fc.Scheduler.WindowStart
		c.markSource("scheduler.window_start", SourceFile)
	}
	if fc.Scheduler.WindowEnd != nil {
		c.Scheduler.WindowEnd = *fc.Scheduler.WindowEnd
		c.markSource("scheduler.window_end", SourceFile)
	}
	if err := setDuration(&c.Scheduler.TickInterval, fc.Scheduler.TickInterval); err != nil {
		return fmt.Errorf("scheduler.tick_interval: %w", err)
	} else if fc.Scheduler.TickInterval != "" {
		c.markSource("scheduler.tick_interval", SourceFile)
	}
	if err := setDuration(&c.Scheduler.StartupDelay, fc.Scheduler.StartupDelay); err != nil {
		return fmt.Errorf("scheduler.startup_delay: %w", err)
	} else if fc.Scheduler.StartupDelay != "" {
		c.markSource("scheduler.startup_delay", SourceFile)
	}

	if fc.Notify.AppName != "" {
		c.Notify.AppName = fc.Notify.AppName
		c.markSource("notify.app_name", SourceFile)
	}
	if err := setDuration(&c.Notify.Timeout, fc.Notify.Timeout); err != nil {
		return fmt.Errorf("notify.timeout: %w", err)
	} else if fc.Notify.Timeout != "" {
		c.markSource("notify.timeout", SourceFile)
	}
	if fc.Notify.Backend != "" {
		c.Notify.Backend = strings.ToLower(strings.TrimSpace(fc.Notify.Backend))
		c.markSource("notify.backend", SourceFile)
	}

	if err := setDuration(&c.Daemon.StartupWait, fc.Daemon.StartupWait); err != nil {
		return fmt.Errorf("daemon.startup_wait: %w", err)
	} else if fc.Daemon.StartupWait != "" {
		c.markSource("daemon.startup_wait", SourceFile)
	}
	if err := setDuration(&c.Daemon.KillTimeout, fc.Daemon.KillTimeout); err != nil {
		return fmt.Errorf("daemon.kill_timeout: %w", err)
	} else if fc.Daemon.KillTimeout != "" {
		c.markSource("daemon.kill_timeout", SourceFile)
	}
	if fc.Daemon.LogMaxSize > 0 {
		c.Daemon.LogMaxSize = fc.Daemon.LogMaxSize
		c.markSource("daemon.log_max_size", SourceFile)
	}

	// Zero is meaningful here: it turns the disk-space check off.
	if md.IsDefined("storage", "min_free_space") {
		c.Storage.MinFreeSpace = fc.Storage.MinFreeSpace
		c.markSource("storage.min_free_space", SourceFile)
	}
	if fc.Storage.HistoryLimit > 0 {
		c.Storage.HistoryLimit = fc.Storage.HistoryLimit
		c.markSource("storage.history_limit", SourceFile)
	}

	return nil
}

func setDuration(dst *time.Duration, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// Validate checks that the configuration is internally consistent.
func (c *RuntimeConfig) Validate() error {
	s := c.Scheduler
	if s.WindowStart < 0 || s.WindowStart > 23 {
		return fmt.Errorf("scheduler.window_start must be between 0 and 23, got %d", s.WindowStart)
	}
	if s.WindowEnd < 1 || s.WindowEnd > 23 {
		return fmt.Errorf("scheduler.window_end must be between 1 and 23, got %d", s.WindowEnd)
	}
	if s.WindowStart >= s.WindowEnd {
		return fmt.Errorf("scheduler.window_start (%d) must be before window_end (%d)", s.WindowStart, s.WindowEnd)
	}
	if s.TickInterval <= 0 {
		return fmt.Errorf("scheduler.tick_interval must be positive")
	}
	if s.StartupDelay < 0 {
		return fmt.Errorf("scheduler.startup_delay cannot be negative")
	}
	if c.Notify.Timeout < 0 {
		return fmt.Errorf("notify.timeout cannot be negative")
	}
	switch c.Notify.Backend {
	case BackendAuto, BackendNotifySend, BackendBeeep, BackendNone:
	default:
		return fmt.Errorf("notify.backend must be one of auto, notify-send, beeep, none; got %q", c.Notify.Backend)
	}
	if c.DataFile == "" {
		return fmt.Errorf("data_file cannot be empty")
	}
	return nil
}

// Keys returns the configuration keys in display order.
func Keys() []string {
	return []string{
		"data_file",
		"scheduler.window_start",
		"scheduler.window_end",
		"scheduler.tick_interval",
		"scheduler.startup_delay",
		"notify.app_name",
		"notify.timeout",
		"notify.backend",
		"daemon.startup_wait",
		"daemon.kill_timeout",
		"daemon.log_max_size",
		"storage.min_free_space",
		"storage.history_limit",
	}
}

// Value returns the current value for key formatted for display.
func (c *RuntimeConfig) Value(key string) string {
	switch key {
	case "data_file":
		return c.DataFile
	case "scheduler.window_start":
		return fmt.Sprint(c.Scheduler.WindowStart)
	case "scheduler.window_end":
		return fmt.Sprint(c.Scheduler.WindowEnd)
	case "scheduler.tick_interval":
		return c.Scheduler.TickInterval.String()
	case "scheduler.startup_delay":
		return c.Scheduler.StartupDelay.String()
	case "notify.app_name":
		return c.Notify.AppName
	case "notify.timeout":
		return c.Notify.Timeout.String()
	case "notify.backend":
		return c.Notify.Backend
	case "daemon.startup_wait":
		return c.Daemon.StartupWait.String()
	case "daemon.kill_timeout":
		return c.Daemon.KillTimeout.String()
	case "daemon.log_max_size":
		return fmt.Sprint(c.Daemon.LogMaxSize)
	case "storage.min_free_space":
		return fmt.Sprint(c.Storage.MinFreeSpace)
	case "storage.history_limit":
		return fmt.Sprint(c.Storage.HistoryLimit)
	}
	return ""
}
