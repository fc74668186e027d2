// Package storage persists Remindly's reminders and notification history.
// Reminders live in a single JSON document managed by Store; delivered
// notifications are logged to a Badger database.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"
)

const (
	// AppName is the application name used for data directories.
	AppName = "remindly"
)

// ErrHistoryBusy is returned when another process has the history
// database open.
var ErrHistoryBusy = errors.New("notification history is in use by another remindly process")

// DB wraps a Badger database connection.
type DB struct {
	db   *badger.DB
	path string
}

// Options configures the database connection.
type Options struct {
	// Path is the database directory path. Empty string uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
}

// DefaultPath returns the default history database path following XDG spec.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, AppName, "history")
}

// Open opens or creates a database at the given path.
func Open(opts Options) (*DB, error) {
	var badgerOpts badger.Options
	var path string

	if opts.InMemory || opts.Path == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0755); err != nil {
			return nil, err
		}
		path = opts.Path
		badgerOpts = badger.DefaultOptions(opts.Path)
	}

	// History is tiny; keep the memtable and value log small.
	badgerOpts = badgerOpts.
		WithLoggingLevel(badger.ERROR).
		WithMemTableSize(8 << 20).
		WithValueLogFileSize(16 << 20)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		if isDirLockError(err) {
			return nil, ErrHistoryBusy
		}
		return nil, err
	}

	return &DB{db: db, path: path}, nil
}

// isDirLockError recognizes Badger's directory lock failure.
func isDirLockError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Cannot acquire directory lock") ||
		strings.Contains(msg, "resource temporarily unavailable")
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the on-disk directory, or "" for in-memory databases.
func (d *DB) Path() string {
	return d.path
}

// Badger returns the underlying Badger database for advanced operations.
func (d *DB) Badger() *badger.DB {
	return d.db
}
