package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/output"
)

// notifyTestCmd sends a test notification.
var notifyTestCmd = &cobra.Command{
	Use:   "notify-test [MESSAGE...]",
	Short: "Send a test desktop notification",
	Long: `Send a notification through the configured backend to check that
desktop notifications work. The attempt is recorded in history.

Examples:
  remindly notify-test
  remindly notify-test "Hello from remindly"`,
	RunE: runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	message := model.TestMessage
	if len(args) > 0 {
		message = strings.Join(args, " ")
	}

	announcer, err := ctx.NewAnnouncer(nil)
	if err != nil {
		return err
	}
	n := announcer.Announce(cmd.Context(), model.TitleTest, message)

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewNotificationOutput(n))
	}
	if !n.Delivered() {
		return fmt.Errorf("notification failed: %s", n.Error)
	}
	ctx.CLIFormatter().Success("Notification sent: " + n.Display())
	return nil
}
