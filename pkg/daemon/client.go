// Package daemon provides a client for the statusbar daemon (statusbard).
// It implements a transparent fallback pattern: if the daemon is running,
// talk to it over its socket; if not, run the configured blocks in-process.
package daemon

import (
	"context"
	"time"

	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/scheduler"
)

// Client defines the interface for interacting with the statusbar daemon.
// Both RemoteClient (socket) and LocalClient (in-process) implement it.
type Client interface {
	// Blocks returns the current view of every block in bar order.
	Blocks(ctx context.Context) ([]scheduler.BlockView, error)

	// Click delivers a click event to the block named by ev.Instance.
	Click(ctx context.Context, ev input.Event) error

	// Config returns the configuration the daemon is running with.
	Config(ctx context.Context) (*RunningConfig, error)

	// Stream subscribes to updates. The channel closes when ctx is done or
	// the connection drops.
	Stream(ctx context.Context) (<-chan StateUpdate, error)

	// IsRunning returns true if the daemon is available and responding.
	IsRunning() bool

	// Close cleans up any resources used by the client.
	Close() error
}

// Update types carried by StateUpdate.
const (
	UpdateInitial      = "initial"
	UpdateBlocks       = "blocks"
	UpdateConfigReload = "config_reload"
	UpdateConfigError  = "config_error"
)

// StateUpdate is one event pushed from the daemon to subscribers.
type StateUpdate struct {
	UpdateType string                `json:"update_type"`
	Blocks     []scheduler.BlockView `json:"blocks,omitempty"`
	Source     string                `json:"source,omitempty"`
	ConfigFile string                `json:"config_file,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// RunningBlock identifies one live block.
type RunningBlock struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// RunningConfig is the configuration the daemon is actually using, served
// on /api/config so clients can verify a reload took effect.
type RunningConfig struct {
	Path          string         `json:"path,omitempty"`
	Theme         string         `json:"theme,omitempty"`
	Icons         string         `json:"icons"`
	Separator     string         `json:"separator,omitempty"`
	RetryInterval time.Duration  `json:"retry_interval"`
	Blocks        []RunningBlock `json:"blocks"`
	BuildErrors   []string       `json:"build_errors,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	LoadedAt      time.Time      `json:"loaded_at"`
}

// NewRunningConfig describes cfg and the blocks built from it. With no
// views, the configured kinds are listed without identities.
func NewRunningConfig(cfg *config.Config, views []scheduler.BlockView, buildErrs []error) *RunningConfig {
	rc := &RunningConfig{
		Path:          cfg.Path,
		Theme:         cfg.Theme,
		Icons:         cfg.Icons,
		Separator:     cfg.Separator,
		RetryInterval: cfg.RetryInterval,
		Blocks:        make([]RunningBlock, 0, len(cfg.Blocks)),
	}
	if views == nil {
		for _, b := range cfg.Blocks {
			rc.Blocks = append(rc.Blocks, RunningBlock{Kind: b.Kind()})
		}
	}
	for _, v := range views {
		rc.Blocks = append(rc.Blocks, RunningBlock{ID: v.ID, Kind: v.Kind})
	}
	for _, err := range buildErrs {
		rc.BuildErrors = append(rc.BuildErrors, err.Error())
	}
	return rc
}
