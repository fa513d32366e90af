// Package engine runs the daemon's bar: one scheduler generation per
// loaded configuration, publishing into the shared store.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/grovetools/statusbar/bar"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/internal/daemon/store"
	"github.com/grovetools/statusbar/pkg/daemon"
	"github.com/grovetools/statusbar/scheduler"
	"github.com/sirupsen/logrus"
)

// Engine owns the running scheduler and swaps it on reload.
type Engine struct {
	store     *store.Store
	opts      bar.Options
	logger    *logrus.Entry
	startedAt time.Time

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	sched   *scheduler.Scheduler
	running *daemon.RunningConfig
}

// New creates a new Engine instance. opts.Sinks are kept and the store is
// added to them.
func New(st *store.Store, opts bar.Options, logger *logrus.Entry) *Engine {
	opts.Sinks = append(append([]scheduler.Sink{}, opts.Sinks...), st)
	opts.Logger = logger
	return &Engine{
		store:  st,
		opts:   opts,
		logger: logger,
	}
}

// Start runs cfg until ctx is cancelled or Stop is called. It returns the
// errors of blocks that could not be built; those blocks are left out.
func (e *Engine) Start(ctx context.Context, cfg *config.Config) ([]error, error) {
	e.mu.Lock()
	if e.ctx != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("engine already started")
	}
	e.ctx = ctx
	e.startedAt = time.Now()
	e.mu.Unlock()

	return e.load(cfg)
}

// Reload replaces the running blocks with the blocks of cfg. Every block
// gets a new identity; updates still running in the old generation are
// cancelled.
func (e *Engine) Reload(cfg *config.Config) ([]error, error) {
	e.mu.Lock()
	started := e.ctx != nil
	e.mu.Unlock()
	if !started {
		return nil, fmt.Errorf("engine not started")
	}
	return e.load(cfg)
}

func (e *Engine) load(cfg *config.Config) ([]error, error) {
	s, buildErrs := bar.Build(cfg, e.opts)
	if s == nil {
		return nil, buildErrs[0]
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
	if e.ctx.Err() != nil {
		return buildErrs, e.ctx.Err()
	}

	genCtx, cancel := context.WithCancel(e.ctx)
	done := make(chan struct{})
	e.cancel, e.done, e.sched = cancel, done, s

	running := daemon.NewRunningConfig(cfg, s.Views(), buildErrs)
	running.StartedAt = e.startedAt
	running.LoadedAt = time.Now()
	e.running = running

	go func() {
		defer close(done)
		if err := s.Run(genCtx); err != nil {
			e.logger.WithError(err).Error("Scheduler stopped with error")
		}
	}()

	e.logger.WithFields(logrus.Fields{
		"blocks": s.Len(),
		"failed": len(buildErrs),
		"config": cfg.Path,
	}).Info("Blocks loaded")
	return buildErrs, nil
}

// Stop halts the running generation and waits for its loop to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	<-e.done
	e.cancel, e.done, e.sched = nil, nil, nil
}

// Dispatch routes a click to the running block with identity ev.Instance.
func (e *Engine) Dispatch(ctx context.Context, ev input.Event) error {
	if ev.Instance == "" {
		return errors.New(errors.ErrCodeInvalidInput, "click event has no instance")
	}

	e.mu.Lock()
	s := e.sched
	e.mu.Unlock()
	if s == nil {
		return errors.New(errors.ErrCodeInternal, "no blocks are running")
	}

	found := false
	for _, v := range s.Views() {
		if v.ID == ev.Instance {
			found = true
			break
		}
	}
	if !found {
		return errors.BlockNotFound(ev.Instance)
	}
	return s.Dispatch(ctx, ev)
}

// RunningConfig returns the active configuration, or nil before Start.
func (e *Engine) RunningConfig() *daemon.RunningConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running == nil {
		return nil
	}
	rc := *e.running
	return &rc
}

// Store returns the engine's state store.
func (e *Engine) Store() *store.Store {
	return e.store
}
