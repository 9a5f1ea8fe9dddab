// Package lockfile implements the per-packages-directory mutual exclusion
// used by every mutating command. The lock is a PID file created with
// O_CREATE|O_EXCL; staleness is decided by probing the recorded process with
// signal 0, so a crashed holder can never wedge the directory.
package lockfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"
)

// LockHeldError reports that another live process holds the lock.
type LockHeldError struct {
	Path string
	PID  int
}

func (e *LockHeldError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("another hoist invocation (pid %d) holds the lock %s", e.PID, e.Path)
	}
	return fmt.Sprintf("another hoist invocation holds the lock %s", e.Path)
}

// Handle is a held lock. Release is idempotent.
type Handle struct {
	path string
	pid  int

	mu       sync.Mutex
	released bool
}

// Acquire takes the lock at path without blocking. If a live process holds
// it, Acquire fails immediately with a LockHeldError naming the holder.
// Stale locks left by dead processes are removed and acquisition is retried
// once.
func Acquire(path string, logger *log.Logger) (*Handle, error) {
	for attempt := 0; attempt < 2; attempt++ {
		h, err := tryCreate(path)
		if err == nil {
			logger.Debug("acquired lock", "path", path, "pid", h.pid)
			return h, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		holder, readErr := readHolder(path)
		if readErr != nil || holder <= 0 || !processAlive(holder) {
			// Dead holder or unreadable file: clear it and retry once.
			logger.Debug("removing stale lock", "path", path, "pid", holder)
			os.Remove(path)
			continue
		}

		return nil, &LockHeldError{Path: path, PID: holder}
	}
	return nil, &LockHeldError{Path: path}
}

// Release drops the lock. Safe to call multiple times and on every exit
// path; engines defer it immediately after Acquire.
func (h *Handle) Release(logger *log.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return
	}
	h.released = true

	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove lock file", "path", h.path, "error", err)
		return
	}
	logger.Debug("released lock", "path", h.path, "pid", h.pid)
}

func tryCreate(path string) (*Handle, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pid := os.Getpid()
	if _, err := fmt.Fprintf(f, "%d\n", pid); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}
	return &Handle{path: path, pid: pid}, nil
}

func readHolder(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// processAlive probes pid with signal 0: delivery is never attempted, only
// existence is checked.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
