package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertInvariant(t *testing.T) {
	assert.NotPanics(t, func() { AssertInvariant(true, "this should not panic") })
	assert.PanicsWithValue(t, "invariant violated - test message", func() {
		AssertInvariant(false, "test message")
	})
}

func TestRunLock_KeyedByToken(t *testing.T) {
	dir := t.TempDir()

	first, err := NewRunLockIn(dir, "token-a")
	require.NoError(t, err)
	same, err := NewRunLockIn(dir, "token-a")
	require.NoError(t, err)
	other, err := NewRunLockIn(dir, "token-b")
	require.NoError(t, err)

	assert.Equal(t, first.LockPath(), same.LockPath())
	assert.NotEqual(t, first.LockPath(), other.LockPath())
	assert.True(t, strings.HasSuffix(first.LockPath(), ".lock"))
	assert.NotContains(t, first.LockPath(), "token-a")
	assert.Equal(t, dir, filepath.Dir(first.LockPath()))
}

func TestRunLock_SecondRunFails(t *testing.T) {
	dir := t.TempDir()

	first, err := NewRunLockIn(dir, "token")
	require.NoError(t, err)
	require.NoError(t, first.TryLock())

	second, err := NewRunLockIn(dir, "token")
	require.NoError(t, err)
	assert.Error(t, second.TryLock())

	other, err := NewRunLockIn(dir, "other-token")
	require.NoError(t, err)
	require.NoError(t, other.TryLock())
	require.NoError(t, other.Unlock())

	require.NoError(t, first.Unlock())
	_, err = os.Stat(first.LockPath())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, second.TryLock())
	require.NoError(t, second.Unlock())
}
