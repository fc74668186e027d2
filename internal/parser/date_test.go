package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/remindly/internal/errors"
	"github.com/manav03panchal/remindly/internal/model"
)

// Wednesday.
var refNow = time.Date(2024, 3, 13, 10, 30, 0, 0, time.UTC)

func TestResolveDateStrict(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.DateKey
	}{
		{"iso", "2024-01-01", "2024-01-01"},
		{"unpadded", "2024-1-5", "2024-01-05"},
		{"surrounding_space", " 2024-12-31 ", "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDate(tt.input, refNow, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDateStrictRejects(t *testing.T) {
	inputs := []string{"", "tomorrow", "01/02/2024", "2024-13-01", "2024-02-30"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ResolveDate(input, refNow, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidDateFormat)
			assert.True(t, errors.IsUserError(err))
		})
	}
}

func TestResolveDateRelative(t *testing.T) {
	tests := []struct {
		input string
		want  model.DateKey
	}{
		{"+1d", "2024-03-14"},
		{"+3d", "2024-03-16"},
		{"+2w", "2024-03-27"},
		{"+20d", "2024-04-02"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ResolveDate(tt.input, refNow, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolveDate("+0d", refNow, true)
	assert.ErrorIs(t, err, errors.ErrInvalidDateFormat)
}

func TestResolveDateNatural(t *testing.T) {
	t.Run("today", func(t *testing.T) {
		got, err := ResolveDate("Today", refNow, true)
		require.NoError(t, err)
		assert.Equal(t, model.DateKey("2024-03-13"), got)
	})

	t.Run("tomorrow", func(t *testing.T) {
		got, err := ResolveDate("tomorrow", refNow, true)
		require.NoError(t, err)
		assert.Equal(t, model.DateKey("2024-03-14"), got)
	})

	t.Run("iso_still_accepted", func(t *testing.T) {
		got, err := ResolveDate("2024-07-04", refNow, true)
		require.NoError(t, err)
		assert.Equal(t, model.DateKey("2024-07-04"), got)
	})

	t.Run("phrase", func(t *testing.T) {
		got, err := ResolveDate("in 2 weeks", refNow, true)
		require.NoError(t, err)
		assert.Equal(t, model.DateKey("2024-03-27"), got)
	})

	t.Run("gibberish", func(t *testing.T) {
		_, err := ResolveDate("flibbertigibbet", refNow, true)
		assert.ErrorIs(t, err, errors.ErrInvalidDateFormat)
	})
}

func TestRelativeLabel(t *testing.T) {
	tests := []struct {
		date model.DateKey
		want string
	}{
		{"2024-03-13", "Today"},
		{"2024-03-14", "Tomorrow"},
		{"2024-03-12", "Yesterday"},
		{"2024-03-15", "Friday"},
		{"2024-03-19", "Tuesday"},
		{"2024-03-20", "in 7 days"},
		{"2024-03-01", "12 days ago"},
		{"garbage", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.date), func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeLabel(tt.date, refNow))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Wed, Mar 13 2024", FormatDate("2024-03-13"))
	assert.Equal(t, "nope", FormatDate("nope"))
}

func TestDateParseError(t *testing.T) {
	err := NewDateError("someday", "could not understand date")

	assert.Equal(t, "invalid date 'someday': could not understand date", err.Error())
	assert.ErrorIs(t, err, errors.ErrInvalidDateFormat)

	formatted := err.FormatWithExamples()
	assert.Contains(t, formatted, "Valid examples:")
	assert.Contains(t, formatted, "next friday")

	ue := err.ToUserError()
	assert.Equal(t, "date", ue.Field)
	assert.ErrorIs(t, ue, errors.ErrInvalidDateFormat)
}
