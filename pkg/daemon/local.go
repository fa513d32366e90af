package daemon

import (
	"context"
	"fmt"

	"github.com/grovetools/statusbar/bar"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/scheduler"
)

// LocalClient implements Client without a daemon: every Blocks call builds
// the configured blocks and updates each of them once.
type LocalClient struct {
	cfg  *config.Config
	opts bar.Options
}

// NewLocalClient creates a LocalClient for cfg.
func NewLocalClient(cfg *config.Config, opts bar.Options) *LocalClient {
	return &LocalClient{cfg: cfg, opts: opts}
}

// Blocks builds and updates every block once. Blocks that fail to build
// are left out; blocks whose update fails carry the error in their view.
func (c *LocalClient) Blocks(ctx context.Context) ([]scheduler.BlockView, error) {
	s, errs := bar.Build(c.cfg, c.opts)
	if s == nil {
		return nil, errs[0]
	}
	views, _ := s.Once(ctx)
	return views, nil
}

// Click fails: identities only live as long as one process, so a click
// needs the daemon that handed the identity out.
func (c *LocalClient) Click(ctx context.Context, ev input.Event) error {
	return errors.DaemonNotRunning("", fmt.Errorf("clicks need a running daemon"))
}

// Config describes the local configuration. Blocks carry no identity
// because none has been built.
func (c *LocalClient) Config(ctx context.Context) (*RunningConfig, error) {
	return NewRunningConfig(c.cfg, nil, nil), nil
}

// Stream returns an error since streaming is only available via the daemon.
func (c *LocalClient) Stream(ctx context.Context) (<-chan StateUpdate, error) {
	return nil, fmt.Errorf("streaming not available in local mode; start the daemon for real-time updates")
}

// IsRunning returns false since this is the local fallback client.
func (c *LocalClient) IsRunning() bool {
	return false
}

// Close is a no-op for LocalClient.
func (c *LocalClient) Close() error {
	return nil
}

var _ Client = (*LocalClient)(nil)
