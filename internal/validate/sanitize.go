package validate

import (
	"strings"
	"unicode"
)

// SanitizeReminder cleans reminder text for storage: surrounding whitespace
// is trimmed, line endings normalized and control characters other than
// newline and tab removed.
func SanitizeReminder(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = StripControlChars(text)
	return strings.TrimSpace(text)
}

// StripControlChars removes all control characters from a string.
func StripControlChars(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SingleLine collapses runs of whitespace, including newlines, into single
// spaces for one-line list output.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateString truncates a string to maxLen runes, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
