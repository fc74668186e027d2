package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/remindly/internal/errors"
	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/output"
	"github.com/manav03panchal/remindly/internal/parser"
	"github.com/manav03panchal/remindly/internal/storage"
)

// Specific command flags.
var specificFlagNatural bool

// specificCmd represents the specific command.
var specificCmd = &cobra.Command{
	Use:     "specific",
	Aliases: []string{"sp", "date"},
	Short:   "Manage specific-date reminders",
	Long: `Manage reminders bound to a calendar date. A date's reminder is announced
when the scheduler starts on that day. Each date holds at most one reminder;
adding to a date that already has one replaces it.

Dates use the YYYY-MM-DD format. With --natural, phrases such as "tomorrow",
"in 3 days" or "next friday" are accepted too.

Examples:
  remindly specific list
  remindly specific add 2025-03-14 "Pi day"
  remindly specific add --natural tomorrow "Call the bank"
  remindly specific edit 2025-03-14 "Bake a pie"
  remindly specific delete 2025-03-14`,
	RunE: runSpecificList,
}

var specificListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List specific-date reminders",
	Args:    cobra.NoArgs,
	RunE:    runSpecificList,
}

var specificAddCmd = &cobra.Command{
	Use:   "add DATE TEXT...",
	Short: "Add or replace the reminder for a date",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSpecificAdd,
}

var specificEditCmd = &cobra.Command{
	Use:               "edit DATE TEXT...",
	Short:             "Replace the text of an existing date's reminder",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completeSpecificDate,
	RunE:              runSpecificEdit,
}

var specificDeleteCmd = &cobra.Command{
	Use:               "delete DATE",
	Aliases:           []string{"rm", "del"},
	Short:             "Delete the reminder for a date",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeSpecificDate,
	RunE:              runSpecificDelete,
}

func init() {
	for _, c := range []*cobra.Command{specificAddCmd, specificEditCmd, specificDeleteCmd} {
		c.Flags().BoolVarP(&specificFlagNatural, "natural", "n", false,
			"Accept natural-language dates such as 'next friday'")
	}

	specificCmd.AddCommand(specificListCmd)
	specificCmd.AddCommand(specificAddCmd)
	specificCmd.AddCommand(specificEditCmd)
	specificCmd.AddCommand(specificDeleteCmd)
	rootCmd.AddCommand(specificCmd)
}

func runSpecificList(cmd *cobra.Command, args []string) error {
	if err := ctx.LoadReminders(os.Stderr); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintSpecific(ctx.Store.Specific())
	}
	ctx.CLIFormatter().PrintSpecific(ctx.Store.Specific(), ctx.Now())
	return nil
}

func runSpecificAdd(cmd *cobra.Command, args []string) error {
	date, err := resolveDate(args[0])
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")

	replaced := false
	err = ctx.Store.Update(func(s *storage.Store) error {
		_, replaced = s.SpecificFor(date)
		return s.AddOrReplaceSpecific(date, text)
	})
	if err != nil {
		return err
	}

	status, verb := "added", "Added"
	if replaced {
		status, verb = "replaced", "Replaced"
	}
	saved, _ := ctx.Store.SpecificFor(date)
	return printMutation(output.MutationResponse{
		Status: status,
		Kind:   "specific",
		Date:   date.String(),
		Text:   saved,
	}, verb+" reminder for "+describeDate(date))
}

func runSpecificEdit(cmd *cobra.Command, args []string) error {
	date, err := resolveDate(args[0])
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")

	err = ctx.Store.Update(func(s *storage.Store) error {
		date = storedKey(s, args[0], date)
		return s.EditSpecific(date, text)
	})
	if err != nil {
		return err
	}

	saved, _ := ctx.Store.SpecificFor(date)
	return printMutation(output.MutationResponse{
		Status: "updated",
		Kind:   "specific",
		Date:   date.String(),
		Text:   saved,
	}, "Updated reminder for "+describeDate(date))
}

func runSpecificDelete(cmd *cobra.Command, args []string) error {
	date, err := resolveDate(args[0])
	if err != nil {
		return err
	}

	var removed string
	err = ctx.Store.Update(func(s *storage.Store) error {
		date = storedKey(s, args[0], date)
		removed, _ = s.SpecificFor(date)
		return s.DeleteSpecific(date)
	})
	if err != nil {
		return err
	}

	return printMutation(output.MutationResponse{
		Status: "deleted",
		Kind:   "specific",
		Date:   date.String(),
		Text:   removed,
	}, "Deleted reminder for "+describeDate(date))
}

// resolveDate turns a DATE argument into a date key, honouring --natural.
func resolveDate(arg string) (model.DateKey, error) {
	date, err := parser.ResolveDate(arg, ctx.Now(), specificFlagNatural)
	if err != nil {
		var de *parser.DateParseError
		if errors.As(err, &de) {
			return "", de.ToUserError()
		}
		return "", err
	}
	return date, nil
}

// storedKey returns arg as written when the file already holds that exact
// key, as hand-edited files may use unpadded dates.
func storedKey(s *storage.Store, arg string, resolved model.DateKey) model.DateKey {
	raw := model.DateKey(strings.TrimSpace(arg))
	if _, ok := s.SpecificFor(raw); ok {
		return raw
	}
	return resolved
}

func describeDate(date model.DateKey) string {
	if label := parser.RelativeLabel(date, ctx.Now()); label != "" {
		return date.String() + " (" + label + ")"
	}
	return date.String()
}
