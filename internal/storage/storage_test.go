package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/remindly/internal/errors"
	"github.com/manav03panchal/remindly/internal/model"
)

// Helper to create an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// =============================================================================
// DB Tests
// =============================================================================

func TestOpenClose(t *testing.T) {
	t.Run("in_memory", func(t *testing.T) {
		db, err := Open(Options{InMemory: true})
		require.NoError(t, err)
		assert.Equal(t, "", db.Path())
		assert.NotNil(t, db.Badger())
		assert.NoError(t, db.Close())
	})

	t.Run("empty_path_uses_in_memory", func(t *testing.T) {
		db, err := Open(Options{Path: ""})
		require.NoError(t, err)
		db.Close()
	})

	t.Run("on_disk_reports_busy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history")
		db, err := Open(Options{Path: path})
		require.NoError(t, err)
		defer db.Close()
		assert.Equal(t, path, db.Path())

		_, err = Open(Options{Path: path})
		assert.ErrorIs(t, err, ErrHistoryBusy)
	})
}

// =============================================================================
// History Tests
// =============================================================================

func notificationAt(msg string, at time.Time) *model.Notification {
	n := model.NewNotification(model.TitleDaily, msg)
	n.FiredAt = at
	return n
}

func TestHistoryRepoRecordAndList(t *testing.T) {
	repo := NewHistoryRepo(setupTestDB(t))
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, msg := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Record(notificationAt(msg, base.Add(time.Duration(i)*time.Hour))))
	}

	all, err := repo.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Message)
	assert.Equal(t, "first", all[2].Message)
	assert.NotEmpty(t, all[0].Key)

	limited, err := repo.List(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "second", limited[1].Message)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestHistoryRepoLast(t *testing.T) {
	repo := NewHistoryRepo(setupTestDB(t))

	_, err := repo.Last()
	assert.True(t, IsErrKeyNotFound(err))

	n := notificationAt("only", time.Now())
	require.NoError(t, repo.Record(n))

	last, err := repo.Last()
	require.NoError(t, err)
	assert.Equal(t, "only", last.Message)
	assert.Equal(t, model.NotifyDaily, last.Kind)

	got, err := repo.Get(n.Key)
	require.NoError(t, err)
	assert.Equal(t, n.Key, got.Key)
}

func TestHistoryRepoPrune(t *testing.T) {
	repo := NewHistoryRepo(setupTestDB(t))
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(notificationAt(itoa(i), base.Add(time.Duration(i)*time.Second))))
	}

	removed, err := repo.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	remaining, err := repo.List(0)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "4", remaining[0].Message)
	assert.Equal(t, "3", remaining[1].Message)

	removed, err = repo.Prune(10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestHistoryFile(t *testing.T) {
	h := NewHistoryFile(filepath.Join(t.TempDir(), "history"))

	require.NoError(t, h.Record(notificationAt("persisted", time.Now())))

	var messages []string
	require.NoError(t, h.View(func(repo *HistoryRepo) error {
		items, err := repo.List(0)
		for _, n := range items {
			messages = append(messages, n.Message)
		}
		return err
	}))
	assert.Equal(t, []string{"persisted"}, messages)
}

func TestCheckHistoryIntegrity(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, NewHistoryRepo(db).Record(notificationAt("x", time.Now())))

	status := CheckHistoryIntegrity(db)
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, status.Checked)

	status = CheckHistoryIntegrity(nil)
	assert.False(t, status.Healthy)
	assert.True(t, status.Corrupted)
}

func TestIsHistoryCorrupted(t *testing.T) {
	assert.False(t, IsHistoryCorrupted(nil))
	assert.True(t, IsHistoryCorrupted(errors.New("Checksum mismatch in table")))
	assert.False(t, IsHistoryCorrupted(errors.New("permission denied")))
}

// =============================================================================
// Safety Tests
// =============================================================================

func TestSafeWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "file.json")

	require.NoError(t, SafeWrite(path, []byte("one"), 0644, 0))
	require.NoError(t, SafeWrite(path, []byte("two"), 0644, 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".remindly-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckDiskSpace(dir, 0))
	assert.NoError(t, CheckDiskSpace(dir, 1))

	err := CheckDiskSpace(dir, ^uint64(0))
	assert.ErrorIs(t, err, errors.ErrDiskFull)
}

func TestGetDiskSpaceMissingPath(t *testing.T) {
	info, err := GetDiskSpace(filepath.Join(t.TempDir(), "does", "not", "exist"))
	require.NoError(t, err)
	assert.NotZero(t, info.TotalBytes)
	assert.GreaterOrEqual(t, info.FreePercent(), 0.0)
}

func TestBackupDocument(t *testing.T) {
	path := docPathIn(t)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	backup, err := BackupDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "backups", filepath.Base(filepath.Dir(backup)))

	_, err = BackupDocument(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// =============================================================================
// Watcher Tests
// =============================================================================

func TestWatcherReportsDocumentChanges(t *testing.T) {
	path := docPathIn(t)
	var calls atomic.Int32
	changed := make(chan struct{}, 10)

	w, err := NewWatcher(path, 20*time.Millisecond, func() {
		calls.Add(1)
		changed <- struct{}{}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.txt"), []byte("x"), 0644))

	s := NewStore(StoreOptions{Path: path})
	require.NoError(t, s.AddDaily("watched"))
	require.NoError(t, s.Save())

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}
