package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/remindly/internal/errors"
)

// =============================================================================
// ReminderText Tests
// =============================================================================

func TestReminderText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain", "Drink water", "Drink water", nil},
		{"trimmed", "  Stretch  ", "Stretch", nil},
		{"multiline", "line one\r\nline two", "line one\nline two", nil},
		{"control_chars", "Call\x00 mom\x07", "Call mom", nil},
		{"unicode", "Café ☕", "Café ☕", nil},

		{"empty", "", "", errors.ErrEmptyText},
		{"whitespace", "   ", "", errors.ErrEmptyText},
		{"only_control", "\x00\x01", "", errors.ErrEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReminderText(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReminderTextHasNoLengthLimit(t *testing.T) {
	long := strings.Repeat("é", 5000)
	got, err := ReminderText(long)
	require.NoError(t, err)
	assert.Equal(t, long, got)
}

// =============================================================================
// Index Tests
// =============================================================================

func TestIndex(t *testing.T) {
	assert.NoError(t, Index(0, 1))
	assert.NoError(t, Index(2, 3))

	assert.ErrorIs(t, Index(3, 3), errors.ErrIndexOutOfRange)
	assert.ErrorIs(t, Index(-1, 3), errors.ErrIndexOutOfRange)
	assert.ErrorIs(t, Index(0, 0), errors.ErrIndexOutOfRange)
}

// =============================================================================
// InRange Tests
// =============================================================================

func TestInRange(t *testing.T) {
	assert.NoError(t, InRange("limit", 1, 1, 10))
	assert.NoError(t, InRange("limit", 10, 1, 10))

	err := InRange("limit", 11, 1, 10)
	require.Error(t, err)
	assert.Equal(t, "Must be between 1 and 10", errors.GetSuggestion(err))
	assert.Contains(t, err.Error(), "'11'")
}

// =============================================================================
// Sanitize Functions Tests
// =============================================================================

func TestSanitizeReminder(t *testing.T) {
	assert.Equal(t, "a\nb", SanitizeReminder(" a\rb "))
	assert.Equal(t, "tab\there", SanitizeReminder("tab\there"))
}

func TestStripControlChars(t *testing.T) {
	assert.Equal(t, "hello", StripControlChars("he\x1bllo"))
	assert.Equal(t, "a\nb\tc", StripControlChars("a\nb\tc"))
}

func TestSingleLine(t *testing.T) {
	assert.Equal(t, "one two three", SingleLine("one\ntwo   three "))
	assert.Equal(t, "", SingleLine("  \n "))
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"ééééééé", 5, "éé..."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateString(tt.input, tt.maxLen))
		})
	}
}
