package daemon

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultLogMaxSize is the size at which the daemon log is rotated.
const DefaultLogMaxSize = 10 * 1024 * 1024

// LogFile is an append-only log that rotates itself to "<path>.old" once it
// grows past maxSize. It is safe for concurrent writes.
type LogFile struct {
	path    string
	maxSize int64

	mu   sync.Mutex
	file *os.File
	size int64
}

// OpenLogFile opens or creates the log at path.
func OpenLogFile(path string, maxSize int64) (*LogFile, error) {
	if maxSize <= 0 {
		maxSize = DefaultLogMaxSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &LogFile{path: path, maxSize: maxSize}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LogFile) open() error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	l.file = file
	l.size = info.Size()
	return nil
}

// Write implements io.Writer, rotating first if p would overflow the file.
func (l *LogFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return 0, os.ErrClosed
	}
	if l.size > 0 && l.size+int64(len(p)) > l.maxSize {
		if err := l.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := l.file.Write(p)
	l.size += int64(n)
	return n, err
}

// rotate moves the current file to the .old backup and starts a new one.
func (l *LogFile) rotate() error {
	l.file.Close()
	l.file = nil

	backupPath := l.path + ".old"
	os.Remove(backupPath)
	if err := os.Rename(l.path, backupPath); err != nil {
		return fmt.Errorf("failed to rotate log: %w", err)
	}
	return l.open()
}

// Close closes the log file.
func (l *LogFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Path returns the log file path.
func (l *LogFile) Path() string {
	return l.path
}

// TailLog returns the last n lines of the log at path.
func TailLog(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n > 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines, scanner.Err()
}
