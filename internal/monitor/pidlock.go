package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrLocked reports a live monitor that refused to exit within the takeover
// window.
var ErrLocked = errors.New("another monitor instance is running")

const (
	// takeoverWait bounds how long Acquire waits for the previous holder
	// to exit after SIGTERM.
	takeoverWait = 10 * time.Second
	takeoverPoll = 200 * time.Millisecond
)

// PIDLock enforces the single-instance rule through a pid file. A new
// instance asks a live holder to exit with SIGTERM and takes over once it
// is gone; a stale file (dead pid, garbage content) is replaced silently.
type PIDLock struct {
	path string
	log  *slog.Logger
}

// NewPIDLock returns a lock at path, conventionally Paths.PIDFile().
func NewPIDLock(path string) *PIDLock {
	return &PIDLock{path: path, log: slog.Default()}
}

// Acquire takes the lock, evicting a live holder if needed.
func (l *PIDLock) Acquire(ctx context.Context) error {
	if pid, ok := l.read(); ok && pid != os.Getpid() && alive(pid) {
		l.log.Info("asking previous instance to exit", "pid", pid)
		if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
			return fmt.Errorf("%w (pid %d): signal failed: %v", ErrLocked, pid, err)
		}

		deadline := time.Now().Add(takeoverWait)
		for alive(pid) {
			if time.Now().After(deadline) {
				return fmt.Errorf("%w (pid %d)", ErrLocked, pid)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(takeoverPoll):
			}
		}
		l.log.Info("previous instance exited", "pid", pid)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	if err := os.WriteFile(l.path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// Release removes the pid file if this process still owns it.
func (l *PIDLock) Release() {
	if pid, ok := l.read(); ok && pid == os.Getpid() {
		_ = os.Remove(l.path)
	}
}

func (l *PIDLock) read() (int, bool) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// alive probes pid with signal 0. EPERM still means the process exists.
func alive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
