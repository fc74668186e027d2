package parser

import (
	"fmt"
	"strings"

	"github.com/manav03panchal/remindly/internal/errors"
)

// DateExamples provides example date formats accepted with --natural.
var DateExamples = []string{
	"2026-03-14",
	"tomorrow",
	"next friday",
	"+3d",
	"in 2 weeks",
	"march 14",
}

// DateParseError represents a date that could not be resolved. It matches
// errors.ErrInvalidDateFormat under errors.Is.
type DateParseError struct {
	Input      string
	Message    string
	Examples   []string
	Suggestion string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid date '%s': %s", e.Input, e.Message)
}

func (e *DateParseError) Unwrap() error {
	return errors.ErrInvalidDateFormat
}

// NewDateError creates a date parse error with standard examples.
func NewDateError(input, message string) *DateParseError {
	return &DateParseError{
		Input:      input,
		Message:    message,
		Examples:   DateExamples,
		Suggestion: "Use YYYY-MM-DD, or pass --natural for phrases like 'tomorrow'.",
	}
}

// FormatWithExamples returns the error message with example suggestions.
func (e *DateParseError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// ToUserError converts a DateParseError to a UserError for consistent handling.
func (e *DateParseError) ToUserError() *errors.UserError {
	ue := errors.NewUserErrorWithField("date", e.Input, "Invalid date", e.Suggestion)
	ue.Cause = errors.ErrInvalidDateFormat
	return ue
}
