package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/remindly/internal/daemon"
	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/notify"
	"github.com/manav03panchal/remindly/internal/scheduler"
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reminder scheduler in the foreground",
	Long: `Run the scheduler in this terminal until interrupted. Today's specific
reminder is announced shortly after start, and a daily reminder is armed on
the first tick inside the window.

Unlike 'daemon start', this writes no PID file and logs to stderr only.
Send SIGHUP to reload the reminder file.

Examples:
  remindly run
  remindly run --debug`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if !flagDebug {
		logging.Init(logging.DefaultConfig())
	}

	if err := ctx.LoadReminders(os.Stderr); err != nil {
		return err
	}

	announcer, err := ctx.NewAnnouncer(nil)
	if err != nil {
		return err
	}
	svc := scheduler.New(schedulerOptions(announcer))

	runCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigHandler := daemon.NewSignalHandler()
	sigHandler.Setup()
	defer sigHandler.Cleanup()
	go func() {
		sigHandler.Wait(runCtx, func() { svc.Loop().Post(svc.Reload) })
		cancel()
	}()

	if !ctx.IsJSON() {
		ctx.CLIFormatter().Muted("Scheduler running. Press Ctrl+C to stop.")
	}
	return svc.Run(runCtx)
}

// schedulerOptions builds scheduler options from the loaded config.
func schedulerOptions(sink notify.Sink) scheduler.Options {
	cfg := ctx.Config.Scheduler
	return scheduler.Options{
		Store: ctx.Store,
		Sink:  sink,
		Window: scheduler.Window{
			Start: cfg.WindowStart,
			End:   cfg.WindowEnd,
		},
		TickInterval: cfg.TickInterval,
		StartupDelay: cfg.StartupDelay,
		Watch:        true,
	}
}
