package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// LockSuffix is appended to the reminder document path to name its lock file.
	LockSuffix = ".lock"

	lockRetryInterval = 25 * time.Millisecond
)

var (
	// ErrLockAcquireFailed is returned when the lock cannot be acquired.
	ErrLockAcquireFailed = errors.New("failed to acquire reminder file lock")
	// ErrLockAlreadyHeld is returned when another process holds the lock.
	ErrLockAlreadyHeld = errors.New("reminder file is locked by another process")
)

// FileLock is a cross-process advisory lock guarding read-modify-write
// cycles on the reminder document.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a lock for the document at docPath. The lock file
// lives next to it.
func NewFileLock(docPath string) *FileLock {
	return &FileLock{
		path: docPath + LockSuffix,
	}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Acquire attempts to acquire the lock without waiting.
// It returns ErrLockAlreadyHeld if another process holds it.
func (l *FileLock) Acquire() error {
	if l.file != nil {
		return nil
	}

	if err := l.cleanStaleLock(); err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}

	if err := flockAcquire(file); err != nil {
		file.Close()
		if errors.Is(err, ErrLockAlreadyHeld) {
			if pid := l.readPID(); pid > 0 {
				return fmt.Errorf("%w: PID %d", ErrLockAlreadyHeld, pid)
			}
		}
		return err
	}

	// The holder we waited on may have removed the file before we locked
	// it; a lock on an unlinked inode guards nothing.
	if !l.stillLinked(file) {
		flockRelease(file)
		file.Close()
		return ErrLockAlreadyHeld
	}

	if err := writePID(file); err != nil {
		flockRelease(file)
		file.Close()
		return fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}

	l.file = file
	return nil
}

// AcquireContext retries Acquire until it succeeds, ctx is done or an
// error other than ErrLockAlreadyHeld occurs.
func (l *FileLock) AcquireContext(ctx context.Context) error {
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		err := l.Acquire()
		if err == nil || !errors.Is(err, ErrLockAlreadyHeld) {
			return err
		}

		select {
		case <-ctx.Done():
			return NewLockError(err)
		case <-ticker.C:
		}
	}
}

// Release releases the lock.
func (l *FileLock) Release() error {
	if l.file == nil {
		return nil
	}

	// Remove before unlocking so a waiter never locks a file we are about
	// to unlink.
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		flockRelease(l.file)
		l.file.Close()
		l.file = nil
		return err
	}

	if err := flockRelease(l.file); err != nil {
		l.file.Close()
		l.file = nil
		return err
	}

	err := l.file.Close()
	l.file = nil
	return err
}

func (l *FileLock) stillLinked(file *os.File) bool {
	held, err := file.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(l.path)
	if err != nil {
		return false
	}
	return os.SameFile(held, current)
}

func writePID(file *os.File) error {
	if err := file.Truncate(0); err != nil {
		return err
	}
	if _, err := file.Seek(0, 0); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(file, "%d", os.Getpid()); err != nil {
		return err
	}
	return file.Sync()
}

// cleanStaleLock removes a lock file left behind by a process that is no
// longer running.
func (l *FileLock) cleanStaleLock() error {
	pid := l.readPID()
	if pid <= 0 || pid == os.Getpid() {
		return nil
	}

	if isProcessRunning(pid) {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clean stale lock: %v", err)
	}

	return nil
}

// readPID reads the PID from the lock file.
// Returns 0 if the file doesn't exist or doesn't contain a valid PID.
func (l *FileLock) readPID() int {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}

	return pid
}

// LockError provides a user-friendly error message for lock failures.
type LockError struct {
	Err error
	PID int
}

func (e *LockError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("reminder file is busy: another remindly process (PID %d) is writing it", e.PID)
	}
	return fmt.Sprintf("reminder file is busy: %v", e.Err)
}

func (e *LockError) Unwrap() error {
	return e.Err
}

// NewLockError creates a new LockError with a helpful message.
func NewLockError(err error) *LockError {
	lockErr := &LockError{Err: err}

	if errors.Is(err, ErrLockAlreadyHeld) {
		errStr := err.Error()
		if parts := strings.Split(errStr, "PID "); len(parts) > 1 {
			if pid, parseErr := strconv.Atoi(strings.TrimSpace(parts[1])); parseErr == nil {
				lockErr.PID = pid
			}
		}
	}

	return lockErr
}
