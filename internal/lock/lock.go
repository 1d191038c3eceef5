// Package lock serialises batches on the same repositories across gitfleet
// processes, using file locks with PID-based stale detection.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds a repository lock.
var ErrLocked = errors.New("repository is locked by another gitfleet process")

// retryDelay is how often a blocked Acquire retries.
const retryDelay = 100 * time.Millisecond

// Lock is a held lock on one repository.
type Lock struct {
	flock    *flock.Flock
	pidFile  string
	lockPath string
	id       string
}

// Manager hands out repository locks stored in one directory.
type Manager struct {
	dir string
}

// NewManager creates a manager keeping lock files in dir.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

func (m *Manager) paths(id string) (lockPath, pidFile string, err error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", "", fmt.Errorf("invalid lock id %q", id)
	}
	return filepath.Join(m.dir, id+".lock"), filepath.Join(m.dir, id+".pid"), nil
}

// Acquire locks id, retrying until ctx is done.
// A lock left behind by a dead process is cleaned up first.
func (m *Manager) Acquire(ctx context.Context, id string) (*Lock, error) {
	lockPath, pidFile, err := m.paths(id)
	if err != nil {
		return nil, err
	}
	cleanStaleLock(pidFile, lockPath)

	fl := flock.New(lockPath)
	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, lockedError(pidFile)
	}
	return m.hold(fl, id, lockPath, pidFile)
}

// TryAcquire locks id without waiting. It returns ErrLocked if the lock is held.
func (m *Manager) TryAcquire(id string) (*Lock, error) {
	lockPath, pidFile, err := m.paths(id)
	if err != nil {
		return nil, err
	}
	cleanStaleLock(pidFile, lockPath)

	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("try lock: %w", err)
	}
	if !locked {
		return nil, lockedError(pidFile)
	}
	return m.hold(fl, id, lockPath, pidFile)
}

func (m *Manager) hold(fl *flock.Flock, id, lockPath, pidFile string) (*Lock, error) {
	if err := writePIDFile(pidFile); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("write PID file: %w", err)
	}
	return &Lock{flock: fl, pidFile: pidFile, lockPath: lockPath, id: id}, nil
}

// IsLocked reports whether id is locked and, if known, by which PID.
func (m *Manager) IsLocked(id string) (bool, int, error) {
	lockPath, pidFile, err := m.paths(id)
	if err != nil {
		return false, 0, err
	}

	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return false, 0, fmt.Errorf("check lock: %w", err)
	}
	if locked {
		_ = fl.Unlock()
		return false, 0, nil
	}

	pid, err := readPIDFile(pidFile)
	if err != nil {
		return true, 0, nil
	}
	return true, pid, nil
}

// AcquireAll locks every id in sorted order so concurrent callers cannot
// deadlock. On failure every lock taken so far is released.
func (m *Manager) AcquireAll(ctx context.Context, ids []string) (*Group, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	g := &Group{}
	for _, id := range sorted {
		l, err := m.Acquire(ctx, id)
		if err != nil {
			_ = g.Release()
			return nil, fmt.Errorf("lock %s: %w", id, err)
		}
		g.locks = append(g.locks, l)
	}
	return g, nil
}

// Release releases the lock.
func (l *Lock) Release() error {
	_ = os.Remove(l.pidFile)

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}

	_ = os.Remove(l.lockPath)
	return nil
}

// ID returns the locked repository ID.
func (l *Lock) ID() string {
	return l.id
}

// Group is a set of locks acquired together.
type Group struct {
	locks []*Lock
}

// Len returns the number of held locks.
func (g *Group) Len() int {
	return len(g.locks)
}

// Release releases every lock in reverse acquisition order.
func (g *Group) Release() error {
	var errs []error
	for i := len(g.locks) - 1; i >= 0; i-- {
		if err := g.locks[i].Release(); err != nil {
			errs = append(errs, err)
		}
	}
	g.locks = nil
	return errors.Join(errs...)
}

func lockedError(pidFile string) error {
	if pid, err := readPIDFile(pidFile); err == nil {
		return fmt.Errorf("%w: held by PID %d", ErrLocked, pid)
	}
	return ErrLocked
}

// cleanStaleLock removes lock files whose owning process is gone.
func cleanStaleLock(pidFile, lockPath string) {
	pid, err := readPIDFile(pidFile)
	if err != nil {
		return
	}
	if isProcessRunning(pid) {
		return
	}
	_ = os.Remove(pidFile)
	_ = os.Remove(lockPath)
}

func writePIDFile(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// isProcessRunning probes pid with signal 0.
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil || errors.Is(err, syscall.EPERM) {
		return true
	}
	return false
}
