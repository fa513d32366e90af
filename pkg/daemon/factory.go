package daemon

import (
	"net"
	"os"
	"time"

	"github.com/grovetools/statusbar/errors"
)

// New returns a RemoteClient when a daemon accepts connections on
// socketPath, and fallback otherwise. Callers use the same API in both
// modes.
func New(socketPath string, fallback Client) Client {
	if client, err := Connect(socketPath); err == nil {
		return client
	}
	return fallback
}

// Connect returns a RemoteClient, or a DAEMON_NOT_RUNNING error when
// nothing listens on socketPath. Use it where the daemon is required.
func Connect(socketPath string) (*RemoteClient, error) {
	if _, err := os.Stat(socketPath); err != nil {
		return nil, errors.DaemonNotRunning(socketPath, err)
	}
	conn, err := net.DialTimeout("unix", socketPath, 100*time.Millisecond)
	if err != nil {
		return nil, errors.DaemonNotRunning(socketPath, err)
	}
	conn.Close()
	return NewRemoteClient(socketPath), nil
}
