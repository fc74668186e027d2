package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/remindly/internal/daemon"
	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/tui"
)

// dashboardCmd represents the dashboard command.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "ui", "tui"},
	Short:   "Open the interactive TUI dashboard",
	Long: `Open an interactive terminal dashboard to view and edit reminders.

The dashboard runs its own scheduler while it is open, so reminders are
announced even without the daemon. Stop the daemon first if you do not want
announcements from both.

Keyboard Controls:
  d - Daily reminders        s - Specific-date reminders
  a - Add                    e - Edit selected
  x - Delete selected        esc - Back
  n - Send a test notification
  r - Reload the reminder file
  q - Quit dashboard

Examples:
  remindly dashboard
  remindly ui`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	// Log lines would tear the alternate screen; send them to the daemon log.
	logFile, err := daemon.OpenLogFile(ctx.Daemon().Paths().Log(), ctx.Config.Daemon.LogMaxSize)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logCfg := logging.DefaultConfig()
	if flagDebug {
		logCfg = logging.DebugConfig()
	}
	logCfg.Output = logFile
	logging.Init(logCfg)

	var dash *tui.DashboardModel

	announcer, err := ctx.NewAnnouncer(func(n *model.Notification) {
		dash.Announced(n)
	})
	if err != nil {
		return err
	}

	dash = tui.NewDashboardModel(tui.DashboardConfig{
		Store:         ctx.Store,
		Sink:          announcer,
		LastAnnounced: ctx.LastAnnounced(),
		Now:           ctx.Now,
	})

	opts := schedulerOptions(announcer)
	return tui.Run(cmd.Context(), dash, opts)
}
