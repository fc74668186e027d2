// Package validate provides input validation helpers for reminder text and
// CLI arguments.
package validate

import (
	"fmt"
	"strings"

	"github.com/manav03panchal/remindly/internal/errors"
)

// MaxHistoryLimit caps how many history entries one listing may request.
const MaxHistoryLimit = 1000

// ReminderText sanitizes and validates reminder text, returning the cleaned
// form that should be stored. Only empty text is rejected; there is no
// length limit.
func ReminderText(text string) (string, error) {
	cleaned := SanitizeReminder(text)
	if cleaned == "" {
		return "", errors.ErrEmptyText
	}
	return cleaned, nil
}

// Index validates a zero-based position into a sequence of the given length.
func Index(index, length int) error {
	if index < 0 || index >= length {
		return fmt.Errorf("%w: %d (have %d)", errors.ErrIndexOutOfRange, index, length)
	}
	return nil
}

// InRange validates that an integer is within a range.
func InRange(field string, value, min, max int) error {
	if value < min || value > max {
		return errors.NewUserErrorWithField(field, fmt.Sprint(value),
			"Value out of range",
			fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return nil
}
