package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/validate"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#10B981") // Green
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorWarning   = lipgloss.Color("#F59E0B") // Yellow
	colorError     = lipgloss.Color("#EF4444") // Red
	colorSuccess   = lipgloss.Color("#10B981") // Green

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleDate = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleToday = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	styleReminder = lipgloss.NewStyle().
			Foreground(colorSecondary)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// Reminder formats reminder text.
func (c *CLIFormatter) Reminder(text string) string {
	return c.render(styleReminder, text)
}

// Truncate shortens text to fit width cells, ending with "…".
func Truncate(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// PrintDaily lists daily reminders with their 1-based positions.
func (c *CLIFormatter) PrintDaily(reminders []string) {
	if c.Format == FormatPlain {
		for _, r := range reminders {
			c.Println(validate.SingleLine(r))
		}
		return
	}

	if len(reminders) == 0 {
		c.Muted("No daily reminders.")
		c.Muted("Use 'remindly daily add \"text\"' to add one.")
		return
	}

	c.Title(fmt.Sprintf("Daily reminders (%d)", len(reminders)))
	digits := len(fmt.Sprint(len(reminders)))
	avail := c.Width() - digits - 4
	for i, r := range reminders {
		c.Printf("  %*d. %s\n", digits, i+1, c.Reminder(Truncate(validate.SingleLine(r), avail)))
	}
}

// PrintSpecific lists date-bound reminders, highlighting the one for now's
// date. Multi-line text is shown on one row.
func (c *CLIFormatter) PrintSpecific(reminders []model.SpecificReminder, now time.Time) {
	if c.Format == FormatPlain {
		for _, r := range reminders {
			c.Printf("%s\t%s\n", r.Date, validate.SingleLine(r.Text))
		}
		return
	}

	if len(reminders) == 0 {
		c.Muted("No specific-date reminders.")
		c.Muted("Use 'remindly specific add 2024-12-25 \"text\"' to add one.")
		return
	}

	c.Title(fmt.Sprintf("Specific-date reminders (%d)", len(reminders)))
	avail := c.Width() - len(model.DateLayout) - 6
	for _, r := range reminders {
		date := c.render(styleDate, r.Date.String())
		marker := " "
		if r.Date.IsToday(now) {
			date = c.render(styleToday, r.Date.String())
			marker = "*"
		}
		c.Printf(" %s %s  %s\n", marker, date, c.Reminder(Truncate(validate.SingleLine(r.Text), avail)))
	}
}

// TodayView is what 'remindly today' and the dashboard header show.
type TodayView struct {
	Date          model.DateKey
	Specific      string
	HasSpecific   bool
	DailyCount    int
	SpecificCount int
	LastAnnounced *model.Notification
	DaemonRunning bool
}

// NothingForToday is shown when today has no specific reminder.
const NothingForToday = "Nothing for today..."

// PrintToday prints today's summary.
func (c *CLIFormatter) PrintToday(v TodayView) {
	if c.Format == FormatPlain {
		if v.HasSpecific {
			c.Println(v.Specific)
		} else {
			c.Println(NothingForToday)
		}
		return
	}

	c.Title("Today " + v.Date.String())
	if v.HasSpecific {
		c.Printf("  %s\n", c.render(styleBold, v.Specific))
	} else {
		c.Muted("  " + NothingForToday)
	}
	c.Println()
	c.Printf("  Daily reminders:    %d\n", v.DailyCount)
	c.Printf("  Specific reminders: %d\n", v.SpecificCount)

	last := "none yet"
	if v.LastAnnounced != nil {
		last = fmt.Sprintf("%s (%s)", v.LastAnnounced.Display(), FormatTimeShort(v.LastAnnounced.FiredAt))
	}
	c.Printf("  Last announced:     %s\n", last)

	if !v.DaemonRunning {
		c.Println()
		c.Muted("  The scheduler is not running. Start it with 'remindly daemon start'.")
	}
}

// PrintHistory lists announced notifications, newest first.
func (c *CLIFormatter) PrintHistory(items []*model.Notification) {
	if c.Format == FormatPlain {
		for _, n := range items {
			c.Printf("%s\t%s\t%s\n", FormatTime(n.FiredAt), n.Kind, n.Message)
		}
		return
	}

	if len(items) == 0 {
		c.Muted("No notifications have been announced yet.")
		return
	}

	rows := make([]TableRow, 0, len(items))
	for _, n := range items {
		status := "delivered"
		if !n.Delivered() {
			status = "failed"
		}
		rows = append(rows, TableRow{Columns: []string{
			FormatTimeShort(n.FiredAt),
			string(n.Kind),
			status,
			Truncate(n.Message, c.Width()-40),
		}})
	}
	c.PrintTable([]string{"WHEN", "KIND", "STATUS", "MESSAGE"}, rows)
}

// TableRow is one row of PrintTable.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	pad := func(s string, w int) string {
		return s + strings.Repeat(" ", w-lipgloss.Width(s)) + "  "
	}

	var headerLine strings.Builder
	for i, h := range headers {
		headerLine.WriteString(pad(h, widths[i]))
	}
	c.Println(c.render(styleBold, strings.TrimRight(headerLine.String(), " ")))

	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var rowLine strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				rowLine.WriteString(pad(col, widths[i]))
			}
		}
		c.Println(strings.TrimRight(rowLine.String(), " "))
	}
}

// KeyValue is one line of PrintKeyValues.
type KeyValue struct {
	Key   string
	Value string
	Note  string
}

// PrintKeyValues prints aligned "key  value  (note)" lines.
func (c *CLIFormatter) PrintKeyValues(items []KeyValue) {
	width := 0
	for _, kv := range items {
		if len(kv.Key) > width {
			width = len(kv.Key)
		}
	}
	for _, kv := range items {
		line := fmt.Sprintf("  %-*s  %s", width, kv.Key, kv.Value)
		if kv.Note != "" {
			line += "  " + c.render(styleMuted, "("+kv.Note+")")
		}
		c.Println(line)
	}
}
