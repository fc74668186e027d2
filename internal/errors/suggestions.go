package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	// User input errors
	ErrEmptyText:         "Provide some reminder text, for example: remindly daily add \"Drink water\"",
	ErrIndexOutOfRange:   "Use 'remindly daily list' to see valid positions.",
	ErrNotFound:          "Use 'remindly specific list' to see dates with reminders.",
	ErrInvalidDateFormat: "Use the YYYY-MM-DD format, or pass --natural for phrases like 'next friday'.",

	// System errors
	ErrDiskFull:          "Free up disk space and try again. Your reminders are preserved in memory.",
	ErrDocumentCorrupted: "Fix or remove the reminder file; it was treated as empty.",
	ErrLockHeld:          "Another remindly command is writing the reminder file. Try again in a moment.",
	ErrPermissionDenied:  "Check file permissions in your data directory (~/.local/share/remindly/).",
}

// GetSuggestion returns a suggestion for an error, if available.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	return ""
}

// FormatError formats an error with its suggestion on a second line.
func FormatError(err error) string {
	msg := err.Error()
	if suggestion := GetSuggestion(err); suggestion != "" {
		msg += "\n" + suggestion
	}
	return msg
}
