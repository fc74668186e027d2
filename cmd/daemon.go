package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/remindly/internal/daemon"
	"github.com/manav03panchal/remindly/internal/errors"
	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/notify"
	"github.com/manav03panchal/remindly/internal/output"
	"github.com/manav03panchal/remindly/internal/scheduler"
	"github.com/manav03panchal/remindly/internal/storage"
	"github.com/manav03panchal/remindly/internal/validate"
)

// Daemon command flags.
var (
	daemonStartFlagForeground bool
	daemonLogsFlagTail        int
	daemonLogsFlagFollow      bool
	daemonInstallFlagForce    bool
)

// maxStatusErrorLen caps the last error shown by 'daemon status'.
const maxStatusErrorLen = 120

// daemonCmd represents the daemon command.
var daemonCmd = &cobra.Command{
	Use:     "daemon [command]",
	Aliases: []string{"bg", "service"},
	Short:   "Manage the background scheduler",
	Long: `Manage the Remindly background daemon, which announces today's specific
reminder at startup and one random daily reminder per day.

Examples:
  remindly daemon start
  remindly daemon status
  remindly daemon stop
  remindly daemon logs --tail 20`,
	RunE: runDaemonStatus,
}

// daemonStartCmd starts the daemon.
var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the background daemon",
	Long: `Start the Remindly background daemon.

Examples:
  remindly daemon start                # Start in background
  remindly daemon start --foreground   # Start in foreground (for debugging)`,
	Args: cobra.NoArgs,
	RunE: runDaemonStart,
}

// daemonStopCmd stops the daemon.
var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

// daemonStatusCmd shows daemon status.
var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

// daemonLogsCmd shows daemon logs.
var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View daemon logs",
	Long: `View the daemon log file.

Examples:
  remindly daemon logs
  remindly daemon logs --tail 50
  remindly daemon logs --follow`,
	Args: cobra.NoArgs,
	RunE: runDaemonLogs,
}

// daemonInstallCmd installs the daemon as a system service.
var daemonInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install daemon as a system service",
	Long: `Install the Remindly daemon as a service that starts automatically on login.

On macOS, this creates a launchd agent in ~/Library/LaunchAgents.
On Linux, this creates a systemd user service in ~/.config/systemd/user.

Examples:
  remindly daemon install
  remindly daemon install --force   # Reinstall if already installed`,
	Args: cobra.NoArgs,
	RunE: runDaemonInstall,
}

// daemonUninstallCmd uninstalls the daemon system service.
var daemonUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall daemon system service",
	Long: `Remove the Remindly daemon from system services.

This stops the service and removes the service configuration.`,
	Args: cobra.NoArgs,
	RunE: runDaemonUninstall,
}

func init() {
	daemonStartCmd.Flags().BoolVar(&daemonStartFlagForeground, "foreground", false,
		"Run in foreground (don't daemonize)")

	daemonLogsCmd.Flags().IntVarP(&daemonLogsFlagTail, "tail", "n", 20,
		"Number of lines to show")
	daemonLogsCmd.Flags().BoolVar(&daemonLogsFlagFollow, "follow", false,
		"Follow log output (like tail -f)")

	daemonInstallCmd.Flags().BoolVar(&daemonInstallFlagForce, "force", false,
		"Force reinstall if already installed")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonLogsCmd)
	daemonCmd.AddCommand(daemonInstallCmd)
	daemonCmd.AddCommand(daemonUninstallCmd)

	rootCmd.AddCommand(daemonCmd)
}

// runDaemonStart handles the daemon start command.
func runDaemonStart(cmd *cobra.Command, args []string) error {
	d := ctx.Daemon()

	if d.IsRunning() {
		status := d.GetStatus()
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]interface{}{
				"status": "already_running",
				"pid":    status.PID,
			})
		}
		return fmt.Errorf("%w (PID: %d)", daemon.ErrAlreadyRunning, status.PID)
	}

	if !daemonStartFlagForeground {
		pid, err := d.StartBackground()
		if err != nil {
			return err
		}

		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]interface{}{
				"status":   "started",
				"pid":      pid,
				"log_path": d.Paths().Log(),
			})
		}
		ctx.CLIFormatter().Success(fmt.Sprintf("Daemon started (PID: %d)", pid))
		ctx.CLIFormatter().Muted("Logs: " + d.Paths().Log())
		return nil
	}

	return runDaemonForeground(cmd.Context(), d)
}

// runDaemonForeground runs the scheduler under the daemon's PID file and
// signal handling, logging to the daemon log.
func runDaemonForeground(parent context.Context, d *daemon.Daemon) error {
	logFile, err := daemon.OpenLogFile(d.Paths().Log(), ctx.Config.Daemon.LogMaxSize)
	if err != nil {
		return errors.NewSystemErrorWithOp("daemon start", "failed to open daemon log", err)
	}
	defer logFile.Close()

	// A background daemon's stderr is already the log file.
	var logOut io.Writer = logFile
	if isTerminal() {
		logOut = io.MultiWriter(logFile, os.Stderr)
	}
	logCfg := logging.DefaultConfig()
	if flagDebug {
		logCfg = logging.DebugConfig()
	}
	logCfg.Output = logOut
	logging.Init(logCfg)

	if err := ctx.LoadReminders(logOut); err != nil {
		return err
	}

	announcer, err := ctx.NewAnnouncer(d.RecordAnnouncement)
	if err != nil {
		return err
	}

	opts := schedulerOptions(announcer)
	opts.OnTick = d.RecordTick
	opts.OnReload = d.RecordReload
	svc := scheduler.New(opts)

	if !ctx.IsJSON() && isTerminal() {
		ctx.CLIFormatter().Muted("Starting remindly daemon (foreground mode)...")
	}
	return d.Start(parent, svc.Run, func() {
		svc.Loop().Post(svc.Reload)
	})
}

// runDaemonStop handles the daemon stop command.
func runDaemonStop(cmd *cobra.Command, args []string) error {
	d := ctx.Daemon()

	if !d.IsRunning() {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]interface{}{"status": "not_running"})
		}
		ctx.CLIFormatter().Muted("Daemon is not running")
		return nil
	}

	pid := d.GetStatus().PID
	if err := d.Stop(); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"status": "stopped",
			"pid":    pid,
		})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Daemon stopped (was PID: %d)", pid))
	return nil
}

// runDaemonStatus handles the daemon status command.
func runDaemonStatus(cmd *cobra.Command, args []string) error {
	d := ctx.Daemon()
	status := d.GetStatus()
	status.Checks = healthChecker().Run()

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(status)
	}

	cli := ctx.CLIFormatter()
	cli.Title("Remindly Daemon")

	items := []output.KeyValue{{Key: "Status", Value: "stopped"}}
	if status.Running {
		items = []output.KeyValue{
			{Key: "Status", Value: "running"},
			{Key: "PID", Value: fmt.Sprint(status.PID)},
			{Key: "Uptime", Value: status.Uptime},
			{Key: "Reminder file", Value: status.DataFile},
		}
		if m := status.Metrics; m != nil {
			items = append(items,
				output.KeyValue{Key: "Announced", Value: fmt.Sprintf("%d (%d failed)", m.NotificationsSentTotal, m.NotificationsFailedTotal)},
				output.KeyValue{Key: "Ticks", Value: fmt.Sprint(m.TicksTotal)},
			)
			if m.NextFireAt != nil {
				items = append(items, output.KeyValue{Key: "Daily fires at", Value: output.FormatTimeOnly(*m.NextFireAt)})
			}
			if m.LastError != "" {
				items = append(items, output.KeyValue{Key: "Last error", Value: validate.TruncateString(m.LastError, maxStatusErrorLen)})
			}
		}
	}
	items = append(items, output.KeyValue{Key: "Log", Value: status.LogPath})
	cli.PrintKeyValues(items)

	cli.Println()
	for _, check := range status.Checks {
		if check.Healthy {
			cli.Success(check.Name)
		} else {
			cli.Error(check.Name + ": " + check.Error)
		}
	}

	if !status.Running {
		cli.Println()
		cli.Muted("Start with: remindly daemon start")
	}
	return nil
}

// healthChecker registers the checks reported by 'daemon status'.
func healthChecker() *daemon.HealthChecker {
	hc := daemon.NewHealthChecker()
	hc.AddCheck("reminder file", func() error {
		err := ctx.Store.Load()
		if le, ok := errors.AsLoadError(err); ok {
			return le.Cause
		}
		return err
	})
	hc.AddCheck("history", func() error {
		return ctx.History.View(func(repo *storage.HistoryRepo) error {
			_, err := repo.Count()
			return err
		})
	})
	hc.AddCheck("notifier", func() error {
		_, err := notify.NewDesktop(ctx.Config.Notify.Backend)
		return err
	})
	return hc
}

// runDaemonLogs handles the daemon logs command.
func runDaemonLogs(cmd *cobra.Command, args []string) error {
	logPath := ctx.Daemon().Paths().Log()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		ctx.CLIFormatter().Muted("No log file found.")
		ctx.CLIFormatter().Muted("Log path: " + logPath)
		return nil
	}

	lines, err := daemon.TailLog(logPath, daemonLogsFlagTail)
	if err != nil {
		return err
	}
	for _, line := range lines {
		ctx.Formatter.Println(line)
	}

	if daemonLogsFlagFollow {
		return followLog(cmd.Context(), logPath, ctx.Formatter.Writer)
	}
	return nil
}

// followLog copies lines appended to path to w until ctx is done.
func followLog(watchCtx context.Context, path string, w io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	for {
		select {
		case <-watchCtx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				if _, err := io.Copy(w, file); err != nil {
					return err
				}
			}
			// Rotation renames the log away; reopen the fresh file.
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				return followLog(watchCtx, path, w)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// runDaemonInstall handles the daemon install command.
func runDaemonInstall(cmd *cobra.Command, args []string) error {
	d := ctx.Daemon()
	mgr, err := daemon.NewServiceManager(d.Paths(), ctx.Config.DataFile)
	if err != nil {
		return err
	}

	if mgr.IsInstalled() && !daemonInstallFlagForce {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]interface{}{
				"status": "already_installed",
				"path":   mgr.ServicePath(),
			})
		}
		ctx.CLIFormatter().Muted("Service is already installed.")
		ctx.CLIFormatter().Muted("Use --force to reinstall.")
		return nil
	}

	if mgr.IsInstalled() && daemonInstallFlagForce {
		if err := mgr.Uninstall(); err != nil {
			return fmt.Errorf("failed to remove existing service: %w", err)
		}
	}

	if err := mgr.Install(); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"status": "installed",
			"path":   mgr.ServicePath(),
		})
	}

	cli := ctx.CLIFormatter()
	cli.Success("Service installed: " + mgr.ServicePath())
	cli.Println()
	cli.Println("The daemon will now start automatically when you log in.")
	cli.Muted("To remove: remindly daemon uninstall")
	return nil
}

// runDaemonUninstall handles the daemon uninstall command.
func runDaemonUninstall(cmd *cobra.Command, args []string) error {
	d := ctx.Daemon()
	mgr, err := daemon.NewServiceManager(d.Paths(), ctx.Config.DataFile)
	if err != nil {
		return err
	}

	if !mgr.IsInstalled() {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]interface{}{"status": "not_installed"})
		}
		ctx.CLIFormatter().Muted("Service is not installed.")
		return nil
	}

	if d.IsRunning() {
		if err := d.Stop(); err != nil {
			// Continue anyway - we want to uninstall
			logging.Warn("failed to stop daemon before uninstall", logging.KeyError, err)
		}
	}

	if err := mgr.Uninstall(); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{"status": "uninstalled"})
	}
	ctx.CLIFormatter().Success("Service uninstalled")
	ctx.CLIFormatter().Muted("To reinstall: remindly daemon install")
	return nil
}
