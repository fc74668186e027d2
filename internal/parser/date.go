// Package parser resolves user-supplied dates into reminder date keys.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/manav03panchal/remindly/internal/model"
)

// relativeRegex matches relative day offsets like "+3d" or "+2w".
var relativeRegex = regexp.MustCompile(`^\+(\d+)([dw])$`)

// ResolveDate turns input into a DateKey. Without natural, only the
// YYYY-MM-DD form is accepted. With natural, relative offsets ("+3d") and
// phrases understood by go-dateparser ("tomorrow", "next friday") are also
// accepted, resolved against now and preferring future dates.
func ResolveDate(input string, now time.Time, natural bool) (model.DateKey, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", NewDateError(input, "date is required")
	}

	key, err := model.ParseDateKey(input)
	if err == nil || !natural {
		if err != nil {
			return "", NewDateError(input, "expected YYYY-MM-DD")
		}
		return key, nil
	}

	if match := relativeRegex.FindStringSubmatch(input); match != nil {
		return parseRelativeDate(match[1], match[2], now)
	}

	switch strings.ToLower(input) {
	case "today":
		return model.DateKeyFor(now), nil
	case "tomorrow":
		return model.DateKeyFor(now.AddDate(0, 0, 1)), nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime:         now,
		PreferredDateSource: dateparser.Future,
	}

	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return "", NewDateError(input, "could not understand date")
	}

	return model.DateKeyFor(result.Time.In(now.Location())), nil
}

// parseRelativeDate parses "+Nd" and "+Nw" offsets.
func parseRelativeDate(numStr, unit string, now time.Time) (model.DateKey, error) {
	num, err := strconv.Atoi(numStr)
	if err != nil || num <= 0 {
		return "", NewDateError("+"+numStr+unit, "offset must be positive")
	}

	days := num
	if unit == "w" {
		days = num * 7
	}
	return model.DateKeyFor(now.AddDate(0, 0, days)), nil
}

// daysBetween counts calendar days from a to b, ignoring time of day and
// DST shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// RelativeLabel describes date relative to now: "Today", "Tomorrow",
// "Yesterday", a weekday name within the coming week, or "in N days" /
// "N days ago" otherwise.
func RelativeLabel(date model.DateKey, now time.Time) string {
	t := date.Time(now.Location())
	if t.IsZero() {
		return ""
	}

	days := daysBetween(now, t)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 1 && days < 7:
		return t.Format("Monday")
	case days >= 7:
		return fmt.Sprintf("in %d days", days)
	default:
		return fmt.Sprintf("%d days ago", -days)
	}
}

// FormatDate formats a date key for display, e.g. "Mon, Jan 2 2006".
func FormatDate(date model.DateKey) string {
	t := date.Time(time.Local)
	if t.IsZero() {
		return date.String()
	}
	return t.Format("Mon, Jan 2 2006")
}
