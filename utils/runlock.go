package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLock prevents two bulk runs for the same account on one machine.
// Both would share a rate limit budget neither of them can see.
type RunLock struct {
	lockFile *flock.Flock
	lockPath string
}

// NewRunLock creates a lock keyed by the token. The token itself never reaches the filesystem.
func NewRunLock(token string) (*RunLock, error) {
	return NewRunLockIn(filepath.Join(os.TempDir(), "emotify"), token)
}

// NewRunLockIn is NewRunLock with an explicit lock directory
func NewRunLockIn(dir, token string) (*RunLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	digest := sha256.Sum256([]byte(token))
	lockPath := filepath.Join(dir, hex.EncodeToString(digest[:8])+".lock")

	return &RunLock{
		lockFile: flock.New(lockPath),
		lockPath: lockPath,
	}, nil
}

// TryLock acquires the lock or fails if another run holds it
func (l *RunLock) TryLock() error {
	locked, err := l.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to try lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another emotify run is already using this account")
	}

	return nil
}

// Unlock releases the lock and removes the lock file
func (l *RunLock) Unlock() error {
	if l.lockFile == nil {
		return nil
	}

	if err := l.lockFile.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock: %w", err)
	}

	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}

	return nil
}

func (l *RunLock) LockPath() string {
	return l.lockPath
}
