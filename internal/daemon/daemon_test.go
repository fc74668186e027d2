package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/scheduler"
)

func testPaths(t *testing.T) Paths {
	return Paths{Dir: t.TempDir()}
}

// =============================================================================
// HealthChecker Tests
// =============================================================================

func TestHealthCheckerCheck(t *testing.T) {
	checker := NewHealthChecker()

	status := checker.Check()
	assert.Equal(t, "healthy", status.Status)
	assert.GreaterOrEqual(t, status.Goroutines, 1)
	assert.GreaterOrEqual(t, status.MemoryMB, 0.0)
	assert.Empty(t, status.Checks)
}

func TestHealthCheckerAddRemoveCheck(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("reminder file", func() error { return nil })
	checker.AddCheck("notifier", func() error { return errors.New("notify-send not found") })

	results := checker.Run()
	require.Len(t, results, 2)
	assert.Equal(t, "reminder file", results[0].Name)
	assert.True(t, results[0].Healthy)
	assert.Equal(t, "notifier", results[1].Name)
	assert.Equal(t, "notify-send not found", results[1].Error)
	assert.False(t, checker.IsHealthy())

	checker.AddCheck("notifier", func() error { return nil })
	assert.Len(t, checker.Run(), 2)
	assert.True(t, checker.IsHealthy())

	checker.RemoveCheck("notifier")
	assert.Len(t, checker.Run(), 1)
}

func TestHealthCheckerJSON(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddCheck("history", func() error { return nil })

	data, err := checker.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status": "healthy"`)
	assert.Contains(t, string(data), "history")
}

// =============================================================================
// Metrics Tests
// =============================================================================

func TestMetricsRecordAnnouncement(t *testing.T) {
	m := NewMetrics()

	m.RecordAnnouncement(model.NewNotification(model.TitleDaily, "Stretch"))
	failed := model.NewNotification(model.TitleSpecific, "Dentist")
	failed.Error = "no notification server"
	m.RecordAnnouncement(failed)

	assert.Equal(t, int64(1), m.NotificationsSent())
	assert.Equal(t, int64(1), m.NotificationsFailed())
	assert.Equal(t, int64(1), m.ErrorsTotal())

	snap := m.Snapshot()
	assert.Equal(t, `"Dentist"`, snap.LastAnnounced)
	assert.Equal(t, "no notification server", snap.LastError)
	assert.Equal(t, int64(1), snap.ErrorsByCategory["notification"])
	assert.NotNil(t, snap.LastNotificationAt)
}

func TestMetricsRecordTick(t *testing.T) {
	m := NewMetrics()
	fireAt := time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC)

	m.RecordTick(scheduler.TickResult{Reason: scheduler.ReasonBeforeWindow})
	assert.Nil(t, m.Snapshot().NextFireAt)

	m.RecordTick(scheduler.TickResult{Scheduled: true, Armed: true, FireAt: fireAt})
	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TicksTotal)
	require.NotNil(t, snap.NextFireAt)
	assert.Equal(t, fireAt, *snap.NextFireAt)
	assert.NotNil(t, snap.LastTickAt)

	// The daily announcement consumes the pending fire time.
	m.RecordAnnouncement(model.NewNotification(model.TitleDaily, "x"))
	assert.Nil(t, m.Snapshot().NextFireAt)
}

func TestMetricsRecordReload(t *testing.T) {
	m := NewMetrics()
	m.RecordReload(nil)
	m.RecordReload(errors.New("bad json"))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ReloadsTotal)
	assert.Equal(t, int64(1), snap.ErrorsByCategory["reload"])
}

func TestMetricsJSONAndReset(t *testing.T) {
	m := NewMetrics()
	m.RecordAnnouncement(model.NewNotification(model.TitleDaily, "x"))
	m.RecordError("test", errors.New("boom"))

	data, err := m.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), "notifications_sent_total")

	m.Reset()
	assert.Zero(t, m.NotificationsSent())
	assert.Zero(t, m.ErrorsTotal())
	assert.Zero(t, m.Ticks())
	snap := m.Snapshot()
	assert.Nil(t, snap.LastNotificationAt)
	assert.Empty(t, snap.LastError)
	assert.Nil(t, snap.ErrorsByCategory)
}

// =============================================================================
// PID File Tests
// =============================================================================

func TestPIDFile(t *testing.T) {
	paths := testPaths(t)
	pf := NewPIDFile(paths.PID())
	assert.Equal(t, filepath.Join(paths.Dir, "remindly.pid"), pf.Path())

	_, err := pf.Read()
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.False(t, pf.IsRunning())

	require.NoError(t, pf.Write())
	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.True(t, pf.IsRunning())
	assert.Equal(t, os.Getpid(), pf.GetRunningPID())

	require.NoError(t, pf.Remove())
	require.NoError(t, pf.Remove())
	assert.Zero(t, pf.GetRunningPID())
}

func TestPIDFileInvalidContent(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "bad.pid"))
	require.NoError(t, os.WriteFile(pf.Path(), []byte("not-a-pid"), 0644))

	_, err := pf.Read()
	assert.Error(t, err)
	assert.False(t, pf.IsRunning())
}

func TestIsProcessRunning(t *testing.T) {
	assert.True(t, IsProcessRunning(os.Getpid()))
	assert.False(t, IsProcessRunning(0))
	assert.False(t, IsProcessRunning(-1))
}

// =============================================================================
// Log File Tests
// =============================================================================

func TestLogFileRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	l, err := OpenLogFile(path, 32)
	require.NoError(t, err)
	defer l.Close()

	_, err = l.Write([]byte(strings.Repeat("a", 20) + "\n"))
	require.NoError(t, err)
	_, err = l.Write([]byte(strings.Repeat("b", 20) + "\n"))
	require.NoError(t, err)

	old, err := os.ReadFile(path + ".old")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 20)+"\n", string(old))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("b", 20)+"\n", string(current))
}

func TestLogFileWriteAfterClose(t *testing.T) {
	l, err := OpenLogFile(filepath.Join(t.TempDir(), "daemon.log"), 0)
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	_, err = l.Write([]byte("x"))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestTailLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	var content strings.Builder
	for i := 1; i <= 5; i++ {
		content.WriteString("line " + strconv.Itoa(i) + "\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(content.String()), 0644))

	lines, err := TailLog(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 4", "line 5"}, lines)

	lines, err = TailLog(path, 0)
	require.NoError(t, err)
	assert.Len(t, lines, 5)

	_, err = TailLog(filepath.Join(t.TempDir(), "missing.log"), 5)
	assert.Error(t, err)
}

// =============================================================================
// Daemon Tests
// =============================================================================

func TestDaemonStatusNotRunning(t *testing.T) {
	d := New(Options{Paths: testPaths(t)})

	status := d.GetStatus()
	assert.False(t, status.Running)
	assert.Equal(t, d.Paths().Log(), status.LogPath)
	assert.False(t, d.IsRunning())
	assert.ErrorIs(t, d.Stop(), ErrNotRunning)
}

func TestDaemonStartForeground(t *testing.T) {
	paths := testPaths(t)
	d := New(Options{Paths: paths, DataFile: "/tmp/reminders.json"})

	var during *Status
	err := d.Start(context.Background(), func(ctx context.Context) error {
		d.RecordTick(scheduler.TickResult{Reason: scheduler.ReasonBeforeWindow})
		during = d.GetStatus()
		return nil
	}, nil)
	require.NoError(t, err)

	require.NotNil(t, during)
	assert.True(t, during.Running)
	assert.Equal(t, os.Getpid(), during.PID)
	assert.Equal(t, "/tmp/reminders.json", during.DataFile)
	require.NotNil(t, during.Metrics)
	assert.Equal(t, int64(1), during.Metrics.TicksTotal)

	_, err = os.Stat(paths.PID())
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(paths.State())
	assert.True(t, os.IsNotExist(err))
}

func TestDaemonStartStopsOnContextCancel(t *testing.T) {
	d := New(Options{Paths: testPaths(t)})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- d.Start(ctx, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}, nil)
	}()

	require.Eventually(t, d.IsRunning, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestDaemonStartAlreadyRunning(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, NewPIDFile(paths.PID()).Write())

	d := New(Options{Paths: paths})
	err := d.Start(context.Background(), func(context.Context) error { return nil }, nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	_, err = d.StartBackground()
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestDaemonBackgroundArgs(t *testing.T) {
	d := New(Options{Paths: testPaths(t)})
	assert.Equal(t, []string{"daemon", "start", "--foreground"}, d.backgroundArgs())

	d = New(Options{Paths: testPaths(t), DataFile: "/data/r.json", Debug: true})
	assert.Equal(t,
		[]string{"daemon", "start", "--foreground", "--file", "/data/r.json", "--debug"},
		d.backgroundArgs())
}

func TestDaemonReadLastLogError(t *testing.T) {
	paths := testPaths(t)
	d := New(Options{Paths: paths})
	assert.Empty(t, d.readLastLogError())

	log := "time=1 level=INFO msg=starting\ntime=2 level=ERROR msg=\"failed to open reminders\"\ntime=3 level=INFO msg=bye\n"
	require.NoError(t, os.WriteFile(paths.Log(), []byte(log), 0644))
	assert.Contains(t, d.readLastLogError(), "failed to open reminders")
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{48 * time.Hour, "2d"},
		{50 * time.Hour, "2d 2h"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatUptime(tt.d))
		})
	}
}

// =============================================================================
// Service Manager Tests
// =============================================================================

func testServiceManager(t *testing.T, goos string) (*ServiceManager, *[][]string) {
	var calls [][]string
	home := t.TempDir()
	return &ServiceManager{
		executablePath: "/usr/local/bin/remindly",
		dataFile:       "/home/me/reminders.json",
		paths:          Paths{Dir: filepath.Join(home, "state")},
		goos:           goos,
		home:           home,
		run: func(name string, args ...string) ([]byte, error) {
			calls = append(calls, append([]string{name}, args...))
			return nil, nil
		},
	}, &calls
}

func TestServiceManagerLaunchd(t *testing.T) {
	m, calls := testServiceManager(t, "darwin")
	assert.False(t, m.IsInstalled())

	require.NoError(t, m.Install())
	assert.True(t, m.IsInstalled())

	content, err := os.ReadFile(m.ServicePath())
	require.NoError(t, err)
	assert.Contains(t, string(content), "<string>com.remindly.daemon</string>")
	assert.Contains(t, string(content), "<string>/usr/local/bin/remindly</string>")
	assert.Contains(t, string(content), "<string>/home/me/reminders.json</string>")
	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"launchctl", "load", m.ServicePath()}, (*calls)[0])

	require.NoError(t, m.Uninstall())
	assert.False(t, m.IsInstalled())
}

func TestSystemdUnitRender(t *testing.T) {
	m, _ := testServiceManager(t, "linux")

	content, err := render("unit", systemdUnit, m.data())
	require.NoError(t, err)
	assert.Contains(t, string(content),
		"ExecStart=/usr/local/bin/remindly daemon start --foreground --file /home/me/reminders.json")
	assert.Contains(t, string(content), "StandardOutput=append:"+m.paths.Log())
	assert.True(t, strings.HasSuffix(m.ServicePath(), filepath.Join("systemd", "user", "remindly.service")))
}

func TestServiceManagerUnsupported(t *testing.T) {
	m, _ := testServiceManager(t, "plan9")
	assert.Empty(t, m.ServicePath())
	assert.False(t, m.IsInstalled())
	assert.Error(t, m.Install())
	assert.Error(t, m.Uninstall())
}
