// Package runtime holds the per-invocation state shared by every command:
// configuration, the reminder store, history and the output formatter.
package runtime

import (
	"io"
	"time"

	"github.com/manav03panchal/remindly/internal/config"
	"github.com/manav03panchal/remindly/internal/daemon"
	"github.com/manav03panchal/remindly/internal/errors"
	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/notify"
	"github.com/manav03panchal/remindly/internal/output"
	"github.com/manav03panchal/remindly/internal/storage"
)

// Context holds the application runtime context.
type Context struct {
	Config    *config.RuntimeConfig
	Store     *storage.Store
	History   *storage.HistoryFile
	Formatter *output.Formatter

	// Debug mode
	Debug bool

	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// Options configures the runtime context.
type Options struct {
	Config    *config.RuntimeConfig
	Format    output.Format
	ColorMode output.ColorMode
	Debug     bool
}

// New creates a runtime context. The store is created but not loaded;
// commands call Load or Update as they need.
func New(opts Options) *Context {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Global
	}

	formatter := output.NewFormatter()
	if opts.Format != "" {
		formatter.Format = opts.Format
	}
	if opts.ColorMode != "" {
		formatter.ColorMode = opts.ColorMode
	}

	return &Context{
		Config: cfg,
		Store: storage.NewStore(storage.StoreOptions{
			Path:         cfg.DataFile,
			MinFreeSpace: cfg.Storage.MinFreeSpace,
		}),
		History:   storage.NewHistoryFile(HistoryPath(cfg)),
		Formatter: formatter,
		Debug:     opts.Debug,
		Now:       time.Now,
	}
}

// HistoryPath places the history database next to the reminder file so a
// custom --file gets its own history.
func HistoryPath(cfg *config.RuntimeConfig) string {
	if cfg.DataFile == config.DefaultDataFile() {
		return storage.DefaultPath()
	}
	return cfg.DataFile + ".history"
}

// Today returns today's date key.
func (c *Context) Today() model.DateKey {
	return model.DateKeyFor(c.Now())
}

// NewAnnouncer builds the notification sink described by the config.
func (c *Context) NewAnnouncer(onAnnounce func(*model.Notification)) (*notify.Announcer, error) {
	notifier, err := notify.NewDesktop(c.Config.Notify.Backend)
	if err != nil {
		return nil, err
	}
	return notify.NewAnnouncer(notify.AnnouncerOptions{
		Notifier:   notifier,
		History:    c.History,
		AppName:    c.Config.Notify.AppName,
		Timeout:    c.Config.Notify.Timeout,
		OnAnnounce: onAnnounce,
	}), nil
}

// Daemon returns a daemon manager for the configured reminder file.
func (c *Context) Daemon() *daemon.Daemon {
	return daemon.New(daemon.Options{
		DataFile:    c.Config.DataFile,
		Debug:       c.Debug,
		StartupWait: c.Config.Daemon.StartupWait,
		KillTimeout: c.Config.Daemon.KillTimeout,
	})
}

// LastAnnounced returns the newest history entry, or nil if there is none
// or the history is unavailable.
func (c *Context) LastAnnounced() *model.Notification {
	var last *model.Notification
	err := c.History.View(func(repo *storage.HistoryRepo) error {
		n, err := repo.Last()
		if err != nil {
			return err
		}
		last = n
		return nil
	})
	if err != nil {
		return nil
	}
	return last
}

// LoadReminders loads the store for a read-only command. An unreadable
// file is reported on stderr and treated as empty.
func (c *Context) LoadReminders(stderr io.Writer) error {
	err := c.Store.Load()
	if _, ok := errors.AsLoadError(err); ok {
		c.ReportLoadWarning(stderr, err)
		return nil
	}
	return err
}

// TodayView summarizes today from the loaded store.
func (c *Context) TodayView() output.TodayView {
	today := c.Today()
	text, ok := c.Store.SpecificFor(today)
	return output.TodayView{
		Date:          today,
		Specific:      text,
		HasSpecific:   ok,
		DailyCount:    len(c.Store.Daily()),
		SpecificCount: len(c.Store.Specific()),
		LastAnnounced: c.LastAnnounced(),
		DaemonRunning: c.Daemon().IsRunning(),
	}
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}
