package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "statusbard.pid")

	running, _, err := IsRunning(path)
	require.NoError(t, err)
	assert.False(t, running)

	require.NoError(t, Acquire(path))
	running, pid, err := IsRunning(path)
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, Release(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, Release(path), "releasing twice is fine")
}

func TestAcquireReplacesStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statusbard.pid")
	// PIDs this large do not exist on Linux or macOS.
	require.NoError(t, os.WriteFile(path, []byte("99999999"), 0644))

	require.NoError(t, Acquire(path))
	pid, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquireRefusesLiveDaemon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statusbard.pid")
	// The parent of the test binary is certainly alive.
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0644))

	err := Acquire(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	require.NoError(t, Release(path))
	_, err = os.Stat(path)
	assert.NoError(t, err, "release leaves another process's file alone")
}
