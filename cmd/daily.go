package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/remindly/internal/errors"
	"github.com/manav03panchal/remindly/internal/output"
	"github.com/manav03panchal/remindly/internal/storage"
)

// dailyCmd represents the daily command.
var dailyCmd = &cobra.Command{
	Use:     "daily",
	Aliases: []string{"dl"},
	Short:   "Manage daily reminders",
	Long: `Manage the pool of daily reminders. Once a day, between the configured
window hours, one of them is picked at random and announced.

Positions shown by 'daily list' start at 1.

Examples:
  remindly daily list
  remindly daily add "Drink a glass of water"
  remindly daily edit 2 "Stand up and stretch"
  remindly daily delete 1`,
	RunE: runDailyList,
}

var dailyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List daily reminders",
	Args:    cobra.NoArgs,
	RunE:    runDailyList,
}

var dailyAddCmd = &cobra.Command{
	Use:   "add TEXT...",
	Short: "Add a daily reminder",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDailyAdd,
}

var dailyEditCmd = &cobra.Command{
	Use:               "edit INDEX TEXT...",
	Short:             "Replace the text of a daily reminder",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completeDailyIndex,
	RunE:              runDailyEdit,
}

var dailyDeleteCmd = &cobra.Command{
	Use:               "delete INDEX",
	Aliases:           []string{"rm", "del"},
	Short:             "Delete a daily reminder",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeDailyIndex,
	RunE:              runDailyDelete,
}

func init() {
	dailyCmd.AddCommand(dailyListCmd)
	dailyCmd.AddCommand(dailyAddCmd)
	dailyCmd.AddCommand(dailyEditCmd)
	dailyCmd.AddCommand(dailyDeleteCmd)
	rootCmd.AddCommand(dailyCmd)
}

func runDailyList(cmd *cobra.Command, args []string) error {
	if err := ctx.LoadReminders(os.Stderr); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintDaily(ctx.Store.Daily())
	}
	ctx.CLIFormatter().PrintDaily(ctx.Store.Daily())
	return nil
}

func runDailyAdd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	var added string
	err := ctx.Store.Update(func(s *storage.Store) error {
		if err := s.AddDaily(text); err != nil {
			return err
		}
		daily := s.Daily()
		added = daily[len(daily)-1]
		return nil
	})
	if err != nil {
		return err
	}

	position := len(ctx.Store.Daily())
	return printMutation(output.MutationResponse{
		Status: "added",
		Kind:   "daily",
		Index:  &position,
		Text:   added,
	}, fmt.Sprintf("Added daily reminder #%d", position))
}

func runDailyEdit(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")

	err = ctx.Store.Update(func(s *storage.Store) error {
		return s.EditDaily(index, text)
	})
	if err != nil {
		return err
	}

	position := index + 1
	return printMutation(output.MutationResponse{
		Status: "updated",
		Kind:   "daily",
		Index:  &position,
		Text:   ctx.Store.Daily()[index],
	}, fmt.Sprintf("Updated daily reminder #%d", position))
}

func runDailyDelete(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	var removed string
	err = ctx.Store.Update(func(s *storage.Store) error {
		if daily := s.Daily(); index >= 0 && index < len(daily) {
			removed = daily[index]
		}
		return s.DeleteDaily(index)
	})
	if err != nil {
		return err
	}

	position := index + 1
	return printMutation(output.MutationResponse{
		Status: "deleted",
		Kind:   "daily",
		Index:  &position,
		Text:   removed,
	}, fmt.Sprintf("Deleted daily reminder #%d", position))
}

// parseIndex converts a 1-based position from the command line to the
// 0-based index the store uses.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		ue := errors.NewUserErrorWithField("index", arg, "Position must be a number",
			"Use 'remindly daily list' to see valid positions.")
		ue.Cause = errors.ErrIndexOutOfRange
		return 0, ue
	}
	return n - 1, nil
}

// printMutation reports a successful change in the active output format.
func printMutation(resp output.MutationResponse, message string) error {
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintMutation(resp)
	}

	cli := ctx.CLIFormatter()
	if ctx.Formatter.Format == output.FormatPlain {
		cli.Println(message)
		return nil
	}
	cli.Success(message)
	if resp.Text != "" {
		cli.Printf("  %s\n", cli.Reminder(resp.Text))
	}
	return nil
}
