package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/remindly/internal/config"
	"github.com/manav03panchal/remindly/internal/errors"
	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/output"
	"github.com/manav03panchal/remindly/internal/runtime"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)

// useTestContext points the package runtime context at a temporary
// reminder file and captures stdout.
func useTestContext(t *testing.T, format output.Format) *bytes.Buffer {
	t.Helper()

	cfg := config.DefaultRuntimeConfig()
	cfg.DataFile = filepath.Join(t.TempDir(), "reminders.json")
	cfg.Notify.Backend = config.BackendNone

	var buf bytes.Buffer
	prev := ctx
	ctx = runtime.New(runtime.Options{Config: cfg, Format: format, ColorMode: output.ColorNever})
	ctx.Formatter.Writer = &buf
	ctx.Now = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		ctx = prev
		specificFlagNatural = false
	})
	return &buf
}

func decodeMutation(t *testing.T, buf *bytes.Buffer) output.MutationResponse {
	t.Helper()
	var resp output.MutationResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	buf.Reset()
	return resp
}

// =============================================================================
// Index Parsing Tests
// =============================================================================

func TestParseIndex(t *testing.T) {
	tests := []struct {
		arg  string
		want int
	}{
		{"1", 0},
		{" 3 ", 2},
		{"0", -1},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseIndex(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIndexRejectsNonNumbers(t *testing.T) {
	_, err := parseIndex("first")
	require.Error(t, err)
	assert.True(t, errors.IsUserError(err))
	assert.True(t, errors.Is(err, errors.ErrIndexOutOfRange))
}

// =============================================================================
// Daily Command Tests
// =============================================================================

func TestDailyAddEditDelete(t *testing.T) {
	buf := useTestContext(t, output.FormatJSON)

	require.NoError(t, runDailyAdd(dailyAddCmd, []string{"Drink", "water"}))
	resp := decodeMutation(t, buf)
	assert.Equal(t, "added", resp.Status)
	assert.Equal(t, "daily", resp.Kind)
	require.NotNil(t, resp.Index)
	assert.Equal(t, 1, *resp.Index)
	assert.Equal(t, "Drink water", resp.Text)

	require.NoError(t, runDailyAdd(dailyAddCmd, []string{"Stretch"}))
	decodeMutation(t, buf)

	require.NoError(t, runDailyEdit(dailyEditCmd, []string{"2", "Stand", "up"}))
	resp = decodeMutation(t, buf)
	assert.Equal(t, "updated", resp.Status)
	assert.Equal(t, "Stand up", resp.Text)
	assert.Equal(t, []string{"Drink water", "Stand up"}, ctx.Store.Daily())

	require.NoError(t, runDailyDelete(dailyDeleteCmd, []string{"1"}))
	resp = decodeMutation(t, buf)
	assert.Equal(t, "deleted", resp.Status)
	assert.Equal(t, "Drink water", resp.Text)
	assert.Equal(t, []string{"Stand up"}, ctx.Store.Daily())
}

func TestDailyDeleteOutOfRange(t *testing.T) {
	useTestContext(t, output.FormatJSON)

	err := runDailyDelete(dailyDeleteCmd, []string{"4"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIndexOutOfRange))
}

func TestDailyListJSON(t *testing.T) {
	buf := useTestContext(t, output.FormatJSON)
	require.NoError(t, runDailyAdd(dailyAddCmd, []string{"Drink water"}))
	buf.Reset()

	require.NoError(t, runDailyList(dailyListCmd, nil))

	var resp output.DailyResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []model.DailyReminder{{Index: 1, Text: "Drink water"}}, resp.Daily)
}

func TestDailyAddPlain(t *testing.T) {
	buf := useTestContext(t, output.FormatPlain)

	require.NoError(t, runDailyAdd(dailyAddCmd, []string{"Drink water"}))
	assert.Equal(t, "Added daily reminder #1\n", buf.String())
}

// =============================================================================
// Specific Command Tests
// =============================================================================

func TestSpecificAddThenReplace(t *testing.T) {
	buf := useTestContext(t, output.FormatJSON)

	require.NoError(t, runSpecificAdd(specificAddCmd, []string{"2024-03-14", "Pi", "day"}))
	resp := decodeMutation(t, buf)
	assert.Equal(t, "added", resp.Status)
	assert.Equal(t, "2024-03-14", resp.Date)
	assert.Equal(t, "Pi day", resp.Text)

	require.NoError(t, runSpecificAdd(specificAddCmd, []string{"2024-03-14", "Bake a pie"}))
	resp = decodeMutation(t, buf)
	assert.Equal(t, "replaced", resp.Status)

	text, ok := ctx.Store.SpecificFor("2024-03-14")
	require.True(t, ok)
	assert.Equal(t, "Bake a pie", text)
}

func TestSpecificAddNatural(t *testing.T) {
	buf := useTestContext(t, output.FormatJSON)
	specificFlagNatural = true

	require.NoError(t, runSpecificAdd(specificAddCmd, []string{"tomorrow", "Call the bank"}))
	resp := decodeMutation(t, buf)
	assert.Equal(t, "2024-03-02", resp.Date)
}

func TestSpecificRejectsNaturalWithoutFlag(t *testing.T) {
	useTestContext(t, output.FormatJSON)

	err := runSpecificAdd(specificAddCmd, []string{"tomorrow", "Call the bank"})
	require.Error(t, err)
	assert.True(t, errors.IsUserError(err))
	assert.True(t, errors.Is(err, errors.ErrInvalidDateFormat))
}

func TestSpecificEditMissingDate(t *testing.T) {
	useTestContext(t, output.FormatJSON)

	err := runSpecificEdit(specificEditCmd, []string{"2024-03-14", "Nothing here"})
	require.Error(t, err)
	assert.True(t, errors.IsUserError(err))
}

func TestSpecificDelete(t *testing.T) {
	buf := useTestContext(t, output.FormatJSON)
	require.NoError(t, runSpecificAdd(specificAddCmd, []string{"2024-03-14", "Pi day"}))
	buf.Reset()

	require.NoError(t, runSpecificDelete(specificDeleteCmd, []string{"2024-03-14"}))
	resp := decodeMutation(t, buf)
	assert.Equal(t, "deleted", resp.Status)
	assert.Equal(t, "Pi day", resp.Text)
	assert.Empty(t, ctx.Store.Specific())
}

func TestSpecificDeleteUnpaddedKey(t *testing.T) {
	buf := useTestContext(t, output.FormatJSON)
	content := `{"specific_date_reminders": {"2024-3-14": "Pi day"}, "daily_reminders": []}`
	require.NoError(t, os.WriteFile(ctx.Store.Path(), []byte(content), 0644))

	require.NoError(t, runSpecificDelete(specificDeleteCmd, []string{"2024-3-14"}))
	resp := decodeMutation(t, buf)
	assert.Equal(t, "2024-3-14", resp.Date)
	assert.Equal(t, "Pi day", resp.Text)
	assert.Empty(t, ctx.Store.Specific())
}

func TestDescribeDate(t *testing.T) {
	useTestContext(t, output.FormatCLI)

	assert.Equal(t, "2024-03-02 (Tomorrow)", describeDate("2024-03-02"))
	assert.Equal(t, "2024-03-11 (in 10 days)", describeDate("2024-03-11"))
	assert.Equal(t, "not-a-date", describeDate("not-a-date"))
}

// =============================================================================
// Completion and Config Tests
// =============================================================================

func TestCompleteDailyIndex(t *testing.T) {
	buf := useTestContext(t, output.FormatJSON)
	require.NoError(t, runDailyAdd(dailyAddCmd, []string{"Drink water"}))
	require.NoError(t, runDailyAdd(dailyAddCmd, []string{"Stretch"}))
	buf.Reset()

	got, _ := completeDailyIndex(dailyDeleteCmd, nil, "2")
	assert.Equal(t, []string{"2\tStretch"}, got)

	got, _ = completeDailyIndex(dailyDeleteCmd, []string{"1"}, "")
	assert.Empty(t, got)
}

func TestCompleteSpecificDate(t *testing.T) {
	buf := useTestContext(t, output.FormatJSON)
	require.NoError(t, runSpecificAdd(specificAddCmd, []string{"2024-03-14", "Pi day"}))
	require.NoError(t, runSpecificAdd(specificAddCmd, []string{"2025-01-01", "New year"}))
	buf.Reset()

	got, _ := completeSpecificDate(specificDeleteCmd, nil, "2025")
	assert.Equal(t, []string{"2025-01-01\tNew year"}, got)
}

func TestConfigGet(t *testing.T) {
	buf := useTestContext(t, output.FormatPlain)

	require.NoError(t, runConfigGet(configGetCmd, []string{"scheduler.window_start"}))
	assert.Equal(t, "6\n", buf.String())

	err := runConfigGet(configGetCmd, []string{"nope"})
	assert.ErrorContains(t, err, "unknown config key")
}

func TestSchedulerOptionsFromConfig(t *testing.T) {
	useTestContext(t, output.FormatCLI)
	ctx.Config.Scheduler.WindowStart = 8
	ctx.Config.Scheduler.WindowEnd = 20

	opts := schedulerOptions(nil)
	assert.Same(t, ctx.Store, opts.Store)
	assert.Equal(t, 8, opts.Window.Start)
	assert.Equal(t, 20, opts.Window.End)
	assert.Equal(t, time.Hour, opts.TickInterval)
	assert.True(t, opts.Watch)
}
