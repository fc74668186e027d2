package storage

import (
	"context"
	stderrors "errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/manav03panchal/remindly/internal/errors"
	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/model"
	"github.com/manav03panchal/remindly/internal/validate"
)

// DefaultLockTimeout bounds how long Update waits for another process to
// finish writing the document.
const DefaultLockTimeout = 5 * time.Second

// Rand is the source of randomness for reminder draws.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// StoreOptions configures a Store.
type StoreOptions struct {
	// Path is the reminder document location.
	Path string
	// Rand drives RandomDaily. Defaults to math/rand/v2.
	Rand Rand
	// MinFreeSpace is the free space Save requires. Zero disables the check.
	MinFreeSpace uint64
	// LockTimeout bounds how long Update waits for the file lock.
	LockTimeout time.Duration
}

// Store owns the daily and specific reminder collections and their
// persisted document. It is not safe for concurrent use; callers serialize
// access through a single loop.
type Store struct {
	path        string
	rand        Rand
	minFree     uint64
	lockTimeout time.Duration

	daily    []string
	specific *SpecificMap
}

// NewStore creates an empty store bound to opts.Path. Call Load to read the
// document.
func NewStore(opts StoreOptions) *Store {
	s := &Store{
		path:        opts.Path,
		rand:        opts.Rand,
		minFree:     opts.MinFreeSpace,
		lockTimeout: opts.LockTimeout,
		daily:       []string{},
		specific:    NewSpecificMap(),
	}
	if s.rand == nil {
		s.rand = globalRand{}
	}
	if s.lockTimeout <= 0 {
		s.lockTimeout = DefaultLockTimeout
	}
	return s
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// =============================================================================
// Persistence
// =============================================================================

// Load replaces the in-memory collections with the document's contents.
// A missing document yields empty collections and no error. An unreadable
// or malformed document also yields empty collections, reported as a
// *errors.LoadError.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.reset()
		if os.IsNotExist(err) {
			logging.DebugLog("reminder file not found, starting empty", logging.KeyPath, s.path)
			return nil
		}
		return &errors.LoadError{Path: s.path, Cause: err}
	}

	doc, err := DecodeDocument(data)
	if err != nil {
		s.reset()
		return &errors.LoadError{Path: s.path, Cause: stderrors.Join(errors.ErrDocumentCorrupted, err)}
	}

	s.daily = doc.Daily
	s.specific = doc.Specific
	logging.DebugLog("reminders loaded",
		logging.KeyPath, s.path,
		"daily", len(s.daily),
		"specific", s.specific.Len())
	return nil
}

// Save writes the collections to the document, replacing it atomically.
// In-memory state is unchanged whether or not the write succeeds.
func (s *Store) Save() error {
	data, err := EncodeDocument(&Document{Specific: s.specific, Daily: s.daily})
	if err != nil {
		return &errors.SaveError{Path: s.path, Cause: err}
	}

	if err := SafeWrite(s.path, data, 0644, s.minFree); err != nil {
		return &errors.SaveError{Path: s.path, Cause: err}
	}

	logging.DebugLog("reminders saved", logging.KeyPath, s.path)
	return nil
}

// Update runs one read-modify-write cycle under the cross-process file
// lock: it reloads the document, applies fn and saves. If fn fails nothing
// is written. A corrupt document is backed up before being replaced.
func (s *Store) Update(fn func(*Store) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()
	return s.UpdateContext(ctx, fn)
}

// UpdateContext is Update with a caller-controlled lock wait.
func (s *Store) UpdateContext(ctx context.Context, fn func(*Store) error) error {
	if err := EnsureDirectory(filepath.Dir(s.path)); err != nil {
		return &errors.SaveError{Path: s.path, Cause: err}
	}

	lock := NewFileLock(s.path)
	if err := lock.AcquireContext(ctx); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.Warn("failed to release reminder lock", logging.KeyPath, lock.Path(), logging.KeyError, err)
		}
	}()

	if err := s.Load(); err != nil {
		if _, ok := errors.AsLoadError(err); !ok {
			return err
		}
		backup, berr := BackupDocument(s.path)
		if berr != nil {
			return stderrors.Join(err, berr)
		}
		logging.Warn("reminder file unreadable, starting from empty",
			logging.KeyPath, s.path, "backup", backup, logging.KeyError, err)
	}

	if err := fn(s); err != nil {
		return err
	}

	return s.Save()
}

func (s *Store) reset() {
	s.daily = []string{}
	s.specific = NewSpecificMap()
}

// =============================================================================
// Daily reminders
// =============================================================================

// Daily returns a copy of the daily reminders in order.
func (s *Store) Daily() []string {
	out := make([]string, len(s.daily))
	copy(out, s.daily)
	return out
}

// AddDaily appends a daily reminder.
func (s *Store) AddDaily(text string) error {
	cleaned, err := validate.ReminderText(text)
	if err != nil {
		return err
	}
	s.daily = append(s.daily, cleaned)
	return nil
}

// EditDaily replaces the daily reminder at index. The index is checked
// before the text.
func (s *Store) EditDaily(index int, text string) error {
	if err := validate.Index(index, len(s.daily)); err != nil {
		return err
	}
	cleaned, err := validate.ReminderText(text)
	if err != nil {
		return err
	}
	s.daily[index] = cleaned
	return nil
}

// DeleteDaily removes the daily reminder at index, shifting later entries
// down by one.
func (s *Store) DeleteDaily(index int) error {
	if err := validate.Index(index, len(s.daily)); err != nil {
		return err
	}
	s.daily = append(s.daily[:index], s.daily[index+1:]...)
	return nil
}

// RandomDaily picks a daily reminder uniformly at random. It reports false
// when there are none.
func (s *Store) RandomDaily() (string, bool) {
	if len(s.daily) == 0 {
		return "", false
	}
	return s.daily[s.rand.IntN(len(s.daily))], true
}

// =============================================================================
// Specific-date reminders
// =============================================================================

// Specific returns a copy of the specific reminders in document order.
func (s *Store) Specific() []model.SpecificReminder {
	return s.specific.Entries()
}

// SpecificFor returns the reminder for date, if any.
func (s *Store) SpecificFor(date model.DateKey) (string, bool) {
	return s.specific.Get(date)
}

// AddOrReplaceSpecific stores text for date, replacing any existing entry.
func (s *Store) AddOrReplaceSpecific(date model.DateKey, text string) error {
	cleaned, err := validate.ReminderText(text)
	if err != nil {
		return err
	}
	s.specific.Set(date, cleaned)
	return nil
}

// EditSpecific replaces the text of an existing entry.
func (s *Store) EditSpecific(date model.DateKey, text string) error {
	if _, ok := s.specific.Get(date); !ok {
		return errors.Wrap(errors.ErrNotFound, date.String())
	}
	cleaned, err := validate.ReminderText(text)
	if err != nil {
		return err
	}
	s.specific.Set(date, cleaned)
	return nil
}

// DeleteSpecific removes the entry for date.
func (s *Store) DeleteSpecific(date model.DateKey) error {
	if !s.specific.Delete(date) {
		return errors.Wrap(errors.ErrNotFound, date.String())
	}
	return nil
}
