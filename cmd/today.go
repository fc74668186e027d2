package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// todayCmd represents the today command.
var todayCmd = &cobra.Command{
	Use:     "today",
	Aliases: []string{"t", "td"},
	Short:   "Show today's reminder",
	Long: `Show today's specific-date reminder, or "Nothing for today...", along
with the number of daily reminders and the last announced reminder.

This is also what 'remindly' prints with no command.

Examples:
  remindly today
  remindly t --format json`,
	Args: cobra.NoArgs,
	RunE: runToday,
}

func init() {
	rootCmd.AddCommand(todayCmd)
}

func runToday(cmd *cobra.Command, args []string) error {
	if err := ctx.LoadReminders(os.Stderr); err != nil {
		return err
	}

	view := ctx.TodayView()
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintToday(view)
	}

	ctx.CLIFormatter().PrintToday(view)
	return nil
}
