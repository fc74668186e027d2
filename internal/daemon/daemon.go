package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/scheduler"
)

// Defaults for Options.
const (
	DefaultStartupWait = 500 * time.Millisecond
	DefaultKillTimeout = 5 * time.Second
)

// RunFunc runs the scheduler until ctx is done.
type RunFunc func(ctx context.Context) error

// Options configures a Daemon.
type Options struct {
	Paths Paths
	// DataFile is passed to the background process.
	DataFile    string
	Debug       bool
	StartupWait time.Duration
	KillTimeout time.Duration
}

// Daemon manages the background scheduler process.
type Daemon struct {
	paths       Paths
	pidFile     *PIDFile
	dataFile    string
	debug       bool
	startupWait time.Duration
	killTimeout time.Duration
	metrics     *Metrics

	stateMu   sync.Mutex
	startedAt time.Time
}

// Status represents the daemon status.
type Status struct {
	Running   bool             `json:"running"`
	PID       int              `json:"pid,omitempty"`
	StartedAt time.Time        `json:"started_at,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	DataFile  string           `json:"data_file,omitempty"`
	LogPath   string           `json:"log_path"`
	Metrics   *MetricsSnapshot `json:"metrics,omitempty"`
	Checks    []CheckResult    `json:"checks,omitempty"`
}

// DaemonState is written by the running daemon for status queries from
// other processes.
type DaemonState struct {
	PID       int             `json:"pid"`
	StartedAt time.Time       `json:"started_at"`
	DataFile  string          `json:"data_file"`
	Metrics   MetricsSnapshot `json:"metrics"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New creates a daemon manager.
func New(opts Options) *Daemon {
	if opts.Paths.Dir == "" {
		opts.Paths = DefaultPaths()
	}
	if opts.StartupWait <= 0 {
		opts.StartupWait = DefaultStartupWait
	}
	if opts.KillTimeout <= 0 {
		opts.KillTimeout = DefaultKillTimeout
	}
	return &Daemon{
		paths:       opts.Paths,
		pidFile:     NewPIDFile(opts.Paths.PID()),
		dataFile:    opts.DataFile,
		debug:       opts.Debug,
		startupWait: opts.StartupWait,
		killTimeout: opts.KillTimeout,
		metrics:     NewMetrics(),
	}
}

// Paths returns the daemon's runtime file locations.
func (d *Daemon) Paths() Paths {
	return d.paths
}

// Metrics returns this process's metrics.
func (d *Daemon) Metrics() *Metrics {
	return d.metrics
}

// GetStatus returns the current daemon status as seen from any process.
func (d *Daemon) GetStatus() *Status {
	status := &Status{LogPath: d.paths.Log()}

	pid := d.pidFile.GetRunningPID()
	if pid == 0 {
		return status
	}
	status.Running = true
	status.PID = pid

	if state, err := d.readState(); err == nil {
		status.StartedAt = state.StartedAt
		status.Uptime = formatUptime(time.Since(state.StartedAt))
		status.DataFile = state.DataFile
		status.Metrics = &state.Metrics
	}
	return status
}

// IsRunning returns true if the daemon is running.
func (d *Daemon) IsRunning() bool {
	return d.pidFile.IsRunning()
}

// Start runs the daemon in the foreground until ctx is done or a shutdown
// signal arrives. SIGHUP calls reload.
func (d *Daemon) Start(ctx context.Context, run RunFunc, reload func()) error {
	if d.IsRunning() {
		return ErrAlreadyRunning
	}

	if err := d.pidFile.Write(); err != nil {
		return err
	}
	defer d.pidFile.Remove()

	d.stateMu.Lock()
	d.startedAt = time.Now()
	d.stateMu.Unlock()
	if err := d.SaveState(); err != nil {
		return err
	}
	defer d.removeState()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigHandler := NewSignalHandler()
	sigHandler.Setup()
	defer sigHandler.Cleanup()

	go func() {
		sigHandler.Wait(ctx, reload)
		cancel()
	}()

	logging.Info("daemon started", "pid", os.Getpid(), logging.KeyPath, d.dataFile)
	err := run(ctx)
	logging.Info("daemon stopped", "pid", os.Getpid())
	return err
}

// RecordAnnouncement updates metrics and the state file after a
// notification. It is meant for notify.AnnouncerOptions.OnAnnounce.
func (d *Daemon) RecordAnnouncement(n *model.Notification) {
	d.metrics.RecordAnnouncement(n)
	d.saveStateQuietly()
}

// RecordTick is meant for scheduler.Options.OnTick.
func (d *Daemon) RecordTick(r scheduler.TickResult) {
	d.metrics.RecordTick(r)
	d.saveStateQuietly()
}

// RecordReload is meant for scheduler.Options.OnReload.
func (d *Daemon) RecordReload(err error) {
	d.metrics.RecordReload(err)
	d.saveStateQuietly()
}

func (d *Daemon) saveStateQuietly() {
	if err := d.SaveState(); err != nil {
		logging.Warn("failed to write daemon state", logging.KeyError, err)
	}
}

// StartBackground re-executes the current binary as a detached
// "daemon start --foreground" process.
func (d *Daemon) StartBackground() (int, error) {
	if pid := d.pidFile.GetRunningPID(); pid > 0 {
		return pid, ErrAlreadyRunning
	}

	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, d.backgroundArgs()...)
	cmd.Stdin = nil
	detach(cmd)

	// Early failures and panics go to stderr; keep them in the log.
	logPath := d.paths.Log()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			defer logFile.Close()
			cmd.Stdout = logFile
			cmd.Stderr = logFile
		}
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}
	go cmd.Wait()

	time.Sleep(d.startupWait)

	if !d.pidFile.IsRunning() {
		if errMsg := d.readLastLogError(); errMsg != "" {
			return 0, fmt.Errorf("daemon failed to start: %s", errMsg)
		}
		return 0, fmt.Errorf("daemon failed to start (check logs: %s)", logPath)
	}

	return cmd.Process.Pid, nil
}

func (d *Daemon) backgroundArgs() []string {
	args := []string{"daemon", "start", "--foreground"}
	if d.dataFile != "" {
		args = append(args, "--file", d.dataFile)
	}
	if d.debug {
		args = append(args, "--debug")
	}
	return args
}

// readLastLogError scans the tail of the log for an error line.
func (d *Daemon) readLastLogError() string {
	lines, err := TailLog(d.paths.Log(), 10)
	if err != nil {
		return ""
	}

	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") || strings.Contains(lower, "failed to") || strings.Contains(lower, "panic") {
			return line
		}
	}
	return ""
}

// Stop asks the running daemon to exit and waits up to the kill timeout
// before killing it.
func (d *Daemon) Stop() error {
	pid := d.pidFile.GetRunningPID()
	if pid == 0 {
		return ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(os.Interrupt); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to stop daemon: %w", err)
		}
	}

	// The daemon is not our child, so poll rather than Wait.
	deadline := time.Now().Add(d.killTimeout)
	for IsProcessRunning(pid) {
		if time.Now().After(deadline) {
			logging.Warn("daemon did not exit in time, killing", "pid", pid)
			process.Kill()
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	d.pidFile.Remove()
	d.removeState()
	return nil
}

// SaveState writes the state file for this process.
func (d *Daemon) SaveState() error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	state := &DaemonState{
		PID:       os.Getpid(),
		StartedAt: d.startedAt,
		DataFile:  d.dataFile,
		Metrics:   d.metrics.Snapshot(),
		UpdatedAt: time.Now(),
	}

	path := d.paths.State()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (d *Daemon) readState() (*DaemonState, error) {
	data, err := os.ReadFile(d.paths.State())
	if err != nil {
		return nil, err
	}

	var state DaemonState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (d *Daemon) removeState() {
	path := d.paths.State()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove daemon state file", logging.KeyError, err, logging.KeyPath, path)
	}
}

// formatUptime formats a duration as uptime.
func formatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	if hours > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}
