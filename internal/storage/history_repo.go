package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/manav03panchal/remindly/internal/model"
)

// HistoryRepo records delivered notifications in an open DB.
type HistoryRepo struct {
	db *DB
}

// NewHistoryRepo creates a new history repository.
func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Record stores n, assigning a time-ordered key if it has none.
func (r *HistoryRepo) Record(n *model.Notification) error {
	if n.Key == "" {
		if n.FiredAt.IsZero() {
			n.FiredAt = time.Now()
		}
		n.SetKey(model.GenerateNotificationKey(n.FiredAt, uuid.NewString()))
	}
	return r.db.Set(n)
}

// Get retrieves a notification by key.
func (r *HistoryRepo) Get(key string) (*model.Notification, error) {
	n := &model.Notification{}
	if err := r.db.Get(key, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns up to limit notifications, newest first. A limit of zero or
// less returns all of them.
func (r *HistoryRepo) List(limit int) ([]*model.Notification, error) {
	return GetNewestByPrefix(r.db, model.PrefixNotification+":", limit, func() *model.Notification {
		return &model.Notification{}
	})
}

// Last returns the most recent notification, or ErrKeyNotFound if none exist.
func (r *HistoryRepo) Last() (*model.Notification, error) {
	items, err := r.List(1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrKeyNotFound
	}
	return items[0], nil
}

// Count returns the number of recorded notifications.
func (r *HistoryRepo) Count() (int, error) {
	keys, err := r.db.ListByPrefix(model.PrefixNotification + ":")
	return len(keys), err
}

// Prune deletes all but the newest keep notifications and returns how many
// were removed.
func (r *HistoryRepo) Prune(keep int) (int, error) {
	keys, err := r.db.ListByPrefix(model.PrefixNotification + ":")
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(keys) <= keep {
		return 0, nil
	}
	stale := keys[:len(keys)-keep]
	if err := r.db.Delete(stale...); err != nil {
		return 0, err
	}
	return len(stale), nil
}

// DefaultHistoryRetention is how many notifications HistoryFile keeps.
const DefaultHistoryRetention = 1000

// HistoryFile opens the on-disk history database only for the duration of
// each call, so the daemon and CLI commands can share it.
type HistoryFile struct {
	opts      Options
	retention int
	retries   int
	backoff   time.Duration
}

// NewHistoryFile creates a HistoryFile for the database at path.
func NewHistoryFile(path string) *HistoryFile {
	return &HistoryFile{
		opts:      Options{Path: path},
		retention: DefaultHistoryRetention,
		retries:   10,
		backoff:   50 * time.Millisecond,
	}
}

// Path returns the database directory.
func (h *HistoryFile) Path() string {
	return h.opts.Path
}

// View opens the database, runs fn and closes it again. It retries while
// another process has the database open.
func (h *HistoryFile) View(fn func(*HistoryRepo) error) error {
	db, err := h.open()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(NewHistoryRepo(db))
}

// Record stores n and trims the history to its retention limit.
func (h *HistoryFile) Record(n *model.Notification) error {
	return h.View(func(repo *HistoryRepo) error {
		if err := repo.Record(n); err != nil {
			return err
		}
		_, err := repo.Prune(h.retention)
		return err
	})
}

func (h *HistoryFile) open() (*DB, error) {
	var lastErr error
	for attempt := 0; attempt <= h.retries; attempt++ {
		db, err := Open(h.opts)
		if err == nil {
			return db, nil
		}
		if !errors.Is(err, ErrHistoryBusy) {
			return nil, err
		}
		lastErr = err
		time.Sleep(h.backoff)
	}
	return nil, lastErr
}
