package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const lockName = ".recorder.lock"

// DirLock marks a directory as owned by one running recorder.
type DirLock struct {
	path string
	file *os.File
}

type LockOptions struct {
	// Takeover allows replacing a lock whose owner is gone or which is older than StaleAfter.
	Takeover   bool
	StaleAfter time.Duration
	Now        func() time.Time
}

type lockOwner struct {
	pid       int
	startedAt time.Time
}

func AcquireDirLock(root string, opts LockOptions) (*DirLock, error) {
	if root == "" {
		return nil, fmt.Errorf("lock dir required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(root, lockName)
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	for attempt := 0; attempt < 3; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			owner := lockOwner{pid: os.Getpid(), startedAt: now().UTC()}
			if err := owner.write(f); err != nil {
				_ = f.Close()
				_ = os.Remove(path)
				return nil, err
			}
			return &DirLock{path: path, file: f}, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}
		if !opts.Takeover {
			return nil, fmt.Errorf("recorder lock exists: %s", path)
		}
		stale, reason, err := lockIsStale(path, now().UTC(), opts.StaleAfter)
		if err != nil {
			return nil, fmt.Errorf("recorder lock exists: %s (stale check failed: %v)", path, err)
		}
		if !stale {
			return nil, fmt.Errorf("recorder lock exists: %s (%s)", path, reason)
		}
		log.Warnw("taking over recorder lock", "path", path, "reason", reason)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("recorder lock exists: %s", path)
}

func (o lockOwner) write(f *os.File) error {
	payload := "pid=" + strconv.Itoa(o.pid) + "\nstarted_at=" + o.startedAt.Format(time.RFC3339) + "\n"
	if _, err := f.WriteString(payload); err != nil {
		return err
	}
	return f.Sync()
}

func readLockOwner(data []byte) (lockOwner, error) {
	var o lockOwner
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "pid":
			if pid, err := strconv.Atoi(value); err == nil && pid > 0 {
				o.pid = pid
			}
		case "started_at":
			if ts, err := time.Parse(time.RFC3339, value); err == nil {
				o.startedAt = ts.UTC()
			}
		}
	}
	return o, sc.Err()
}

// lockIsStale prefers the owner pid when present and falls back to lock age.
func lockIsStale(path string, now time.Time, staleAfter time.Duration) (bool, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, "lock_disappeared", nil
		}
		return false, "", err
	}
	owner, err := readLockOwner(data)
	if err != nil {
		return false, "", err
	}
	if owner.pid > 0 {
		if processAlive(owner.pid) {
			return false, "owner_process_running", nil
		}
		return true, "owner_process_not_running", nil
	}
	switch {
	case owner.startedAt.IsZero():
		return false, "missing_lock_owner_info", nil
	case staleAfter > 0 && now.Sub(owner.startedAt) >= staleAfter:
		return true, "lock_age_exceeded", nil
	default:
		return false, "lock_not_stale", nil
	}
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
		return false
	}
	// EPERM means the process exists under another user.
	return errors.Is(err, syscall.EPERM)
}

func (l *DirLock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	l.path = ""
	return nil
}
