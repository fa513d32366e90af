package server

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grovetools/statusbar/bar"
	"github.com/grovetools/statusbar/command/mocks"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/internal/daemon/engine"
	"github.com/grovetools/statusbar/internal/daemon/store"
	"github.com/grovetools/statusbar/pkg/daemon"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	runner *mocks.Runner
	engine *engine.Engine
	socket string
	client *daemon.RemoteClient
}

func startDaemon(t *testing.T) *fixture {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	logger := logrus.NewEntry(l)

	runner := mocks.NewRunner("a\nb\nc\n")
	eng := engine.New(store.New(), bar.Options{Runner: runner}, logger)
	cfg := config.Default()
	cfg.Icons = "none"
	cfg.Blocks = []config.BlockConfig{{"block": "pamac"}}
	_, err := eng.Start(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(eng.Stop)

	dir, err := os.MkdirTemp("", "sbd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "statusbard.sock")

	srv := New(eng, logger)
	go srv.ListenAndServe(socket)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	var client *daemon.RemoteClient
	require.Eventually(t, func() bool {
		c, err := daemon.Connect(socket)
		if err != nil {
			return false
		}
		client = c
		return true
	}, 2*time.Second, 10*time.Millisecond)
	t.Cleanup(func() { client.Close() })

	require.Eventually(t, func() bool {
		views := eng.Store().Views()
		return len(views) == 1 && views[0].Widgets[0].Text == "3"
	}, 2*time.Second, 10*time.Millisecond)

	return &fixture{runner: runner, engine: eng, socket: socket, client: client}
}

func TestBlocksAndConfig(t *testing.T) {
	f := startDaemon(t)
	ctx := context.Background()

	assert.True(t, f.client.IsRunning())

	views, err := f.client.Blocks(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "pamac", views[0].Kind)
	assert.Equal(t, "3", views[0].Widgets[0].Text)
	assert.Len(t, views[0].ID, 32)

	rc, err := f.client.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, "none", rc.Icons)
	require.Len(t, rc.Blocks, 1)
	assert.Equal(t, views[0].ID, rc.Blocks[0].ID)
	info, err := os.Stat(f.socket)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestClick(t *testing.T) {
	f := startDaemon(t)
	ctx := context.Background()
	id := f.engine.RunningConfig().Blocks[0].ID

	require.NoError(t, f.client.Click(ctx, input.Event{Name: "pamac", Instance: id, Button: input.Left}))
	require.Eventually(t, func() bool { return f.runner.Spawns() == 1 }, 2*time.Second, 10*time.Millisecond)

	err := f.client.Click(ctx, input.Event{Name: "pamac", Instance: "0123", Button: input.Left})
	assert.True(t, errors.Is(err, errors.ErrCodeBlockNotFound), "got %v", err)

	err = f.client.Click(ctx, input.Event{Name: "pamac", Button: input.Left})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
}

func TestStreamDeliversReloads(t *testing.T) {
	f := startDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := f.client.Stream(ctx)
	require.NoError(t, err)

	first := <-updates
	assert.Equal(t, daemon.UpdateInitial, first.UpdateType)
	require.Len(t, first.Blocks, 1)

	f.engine.Store().BroadcastConfigReload("/tmp/config.toml")
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-updates:
			if u.UpdateType == daemon.UpdateConfigReload {
				assert.Equal(t, "/tmp/config.toml", u.ConfigFile)
				return
			}
		case <-deadline:
			t.Fatal("reload not streamed")
		}
	}
}

func TestWebSocket(t *testing.T) {
	f := startDaemon(t)
	id := f.engine.RunningConfig().Blocks[0].ID

	dialer := websocket.Dialer{
		NetDialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", f.socket)
		},
	}
	conn, _, err := dialer.Dial("ws://unix/api/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var initial daemon.StateUpdate
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, daemon.UpdateInitial, initial.UpdateType)
	require.Len(t, initial.Blocks, 1)

	require.NoError(t, conn.WriteJSON(input.Event{Name: "pamac", Instance: id, Button: input.Left}))
	require.Eventually(t, func() bool { return f.runner.Spawns() == 1 }, 2*time.Second, 10*time.Millisecond)

	// The click republishes the block's views.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update daemon.StateUpdate
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, daemon.UpdateBlocks, update.UpdateType)
}
