package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/remindly/internal/errors"
)

// DateLayout is the canonical layout of a date key.
const DateLayout = "2006-01-02"

// parseLayout also accepts unpadded month and day ("2024-1-5").
const parseLayout = "2006-1-2"

// DateKey identifies a specific reminder by calendar date, always in
// canonical YYYY-MM-DD form.
type DateKey string

// ParseDateKey validates and normalizes a date string into a DateKey.
func ParseDateKey(s string) (DateKey, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(parseLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidDateFormat, s)
	}
	return DateKeyFor(t), nil
}

// DateKeyFor returns the date key of t in t's location.
func DateKeyFor(t time.Time) DateKey {
	return DateKey(t.Format(DateLayout))
}

// String returns the key as a plain string.
func (k DateKey) String() string {
	return string(k)
}

// Time returns midnight of the key's date in loc.
func (k DateKey) Time(loc *time.Location) time.Time {
	t, err := time.ParseInLocation(DateLayout, string(k), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsToday reports whether the key matches now's calendar date.
func (k DateKey) IsToday(now time.Time) bool {
	return k == DateKeyFor(now)
}

// SpecificReminder is a reminder bound to exactly one calendar date.
type SpecificReminder struct {
	Date DateKey `json:"date"`
	Text string  `json:"text"`
}

// DailyReminder is a reusable reminder identified by its position.
type DailyReminder struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}
