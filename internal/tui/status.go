package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/output"
	"github.com/manav03panchal/remindly/internal/parser"
	"github.com/manav03panchal/remindly/internal/validate"
)

// StatusClearAfter is how long a status line stays visible.
const StatusClearAfter = 3 * time.Second

// StatusLine is a transient message shown under the header. Each Set bumps
// the sequence number so a stale clear does not wipe a newer message.
type StatusLine struct {
	Text    string
	IsError bool
	seq     int
}

// Set replaces the message and returns its sequence number.
func (s *StatusLine) Set(text string, isError bool) int {
	s.seq++
	s.Text = text
	s.IsError = isError
	return s.seq
}

// Clear removes the message if seq is still the current one.
func (s *StatusLine) Clear(seq int) bool {
	if seq != s.seq {
		return false
	}
	s.Text = ""
	s.IsError = false
	return true
}

// View renders the status line.
func (s *StatusLine) View() string {
	if s.Text == "" {
		return ""
	}
	if s.IsError {
		return StyleError.Render("✗ " + s.Text)
	}
	return StyleSuccess.Render("✓ " + s.Text)
}

// TodayComponent renders the main screen summary.
type TodayComponent struct {
	Today         model.DateKey
	Specific      string
	HasSpecific   bool
	DailyCount    int
	SpecificCount int
	LastAnnounced string
	Armed         bool
	NextTick      time.Time
	Width         int
}

// View renders the today component.
func (tc *TodayComponent) View() string {
	var content strings.Builder

	content.WriteString(StyleDate.Render(parser.FormatDate(tc.Today)))
	content.WriteString("\n\n")

	box := StyleBox
	if tc.HasSpecific {
		content.WriteString(StyleReminder.Render(tc.Specific))
		box = StyleTodayBox
	} else {
		content.WriteString(StyleMuted.Render(output.NothingForToday))
	}
	content.WriteString("\n\n")

	content.WriteString(StyleSubtitle.Render(fmt.Sprintf("%d daily · %d specific", tc.DailyCount, tc.SpecificCount)))
	content.WriteString("\n")

	if tc.Armed {
		content.WriteString(StyleSubtitle.Render("Today's daily reminder is scheduled"))
	} else if !tc.NextTick.IsZero() {
		content.WriteString(StyleSubtitle.Render("Next check at " + output.FormatTimeOnly(tc.NextTick)))
	}

	if tc.LastAnnounced != "" {
		content.WriteString("\n\n")
		content.WriteString(StyleSubtitle.Render("Last announced: "))
		content.WriteString(StyleReminder.Render(tc.LastAnnounced))
	}

	return box.Width(boxWidth(tc.Width)).Render(content.String())
}

// ListComponent renders a selectable list of reminders.
type ListComponent struct {
	Title  string
	Items  []string
	Cursor int
	Empty  string
	Width  int
}

// View renders the list component.
func (lc *ListComponent) View() string {
	var content strings.Builder

	content.WriteString(StyleTitle.Render(lc.Title))
	content.WriteString("\n")

	if len(lc.Items) == 0 {
		content.WriteString(StyleMuted.Render(lc.Empty))
	}

	maxText := boxWidth(lc.Width) - 10
	for i, item := range lc.Items {
		if i > 0 {
			content.WriteString("\n")
		}
		line := fmt.Sprintf("%3d. %s", i+1, output.Truncate(validate.SingleLine(item), maxText))
		if i == lc.Cursor {
			content.WriteString(StyleSelected.Render("> " + line))
		} else {
			content.WriteString("  " + line)
		}
	}

	return StyleBox.Width(boxWidth(lc.Width)).Render(content.String())
}

// specificItems formats specific reminders for a ListComponent.
func specificItems(reminders []model.SpecificReminder, now time.Time) []string {
	items := make([]string, len(reminders))
	for i, r := range reminders {
		label := string(r.Date)
		if rel := parser.RelativeLabel(r.Date, now); rel != "" {
			label += " (" + rel + ")"
		}
		items[i] = label + "  " + r.Text
	}
	return items
}

// HelpBar renders the help line for the given key bindings.
func HelpBar(bindings ...[2]string) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = StyleHelpKey.Render(b[0]) + " " + StyleHelpDesc.Render(b[1])
	}
	return StyleHelp.Render(strings.Join(parts, "  "))
}
