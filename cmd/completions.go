package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/remindly/internal/output"
)

// completeDailyIndex offers the 1-based positions of daily reminders.
func completeDailyIndex(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || ctx == nil || ctx.Store.Load() != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for i, text := range ctx.Store.Daily() {
		pos := strconv.Itoa(i + 1)
		if strings.HasPrefix(pos, toComplete) {
			completions = append(completions, pos+"\t"+output.Truncate(text, 40))
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeSpecificDate offers dates that have a reminder.
func completeSpecificDate(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || ctx == nil || ctx.Store.Load() != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, r := range ctx.Store.Specific() {
		date := r.Date.String()
		if strings.HasPrefix(date, toComplete) {
			completions = append(completions, date+"\t"+output.Truncate(r.Text, 40))
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
