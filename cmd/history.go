package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/storage"
	"github.com/manav03panchal/remindly/internal/validate"
)

// History command flags.
var historyFlagLimit int

// historyCmd represents the history command.
var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h", "hist"},
	Short:   "Show announced reminders",
	Long: `Show reminders the scheduler has announced, newest first, including
failed deliveries.

Examples:
  remindly history
  remindly history --limit 50
  remindly history --format json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlagLimit, "limit", "l", 0,
		"Maximum entries to show (default from config)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit := historyFlagLimit
	if limit == 0 {
		limit = ctx.Config.Storage.HistoryLimit
	}
	if err := validate.InRange("limit", limit, 1, validate.MaxHistoryLimit); err != nil {
		return err
	}

	var (
		items []*model.Notification
		total int
	)
	err := ctx.History.View(func(repo *storage.HistoryRepo) error {
		var err error
		if items, err = repo.List(limit); err != nil {
			return err
		}
		total, err = repo.Count()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintHistory(items, total)
	}

	cli := ctx.CLIFormatter()
	cli.PrintHistory(items)
	if total > len(items) {
		cli.Muted(fmt.Sprintf("Showing %d of %d. Use --limit to see more.", len(items), total))
	}
	return nil
}
