//go:build windows

package storage

import (
	"io"
	"os"
	"strconv"
	"strings"
)

// flockAcquire has no advisory lock to take on Windows. It treats a PID
// recorded by another live process as the lock being held.
func flockAcquire(file *os.File) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 || pid == os.Getpid() {
		return nil
	}
	if isProcessRunning(pid) {
		return ErrLockAlreadyHeld
	}
	return nil
}

// flockRelease is a no-op on Windows; removing the file releases the lock.
func flockRelease(file *os.File) error {
	return nil
}

// isProcessRunning checks if a process with the given PID is still running.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess opens a handle only for live processes.
	process.Release()
	return true
}
