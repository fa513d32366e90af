// Package scheduler drives a set of blocks from a single loop: it polls each
// block when it falls due, routes clicks to the block that owns the clicked
// widget, and publishes consistent snapshots of every block's widgets.
package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/grovetools/statusbar/block"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/widget"
	"github.com/sirupsen/logrus"
)

// DefaultRetryInterval is used to reschedule a block whose update failed
// before it ever reported an interval.
const DefaultRetryInterval = 5 * time.Second

// BlockView is the published state of one block.
type BlockView struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Widgets   []widget.Snapshot `json:"widgets"`
	Err       string            `json:"error,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Sink receives every published set of views. Publish is called from the
// scheduler loop and must not block.
type Sink interface {
	Publish(views []BlockView)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(views []BlockView)

// Publish calls f.
func (f SinkFunc) Publish(views []BlockView) { f(views) }

// Config controls the scheduler.
type Config struct {
	// RetryInterval reschedules a failed block that has no known interval.
	RetryInterval time.Duration
	// Sinks receive the views after every change.
	Sinks []Sink
}

type entry struct {
	kind     string
	block    block.Block
	busy     bool
	pending  []input.Event
	interval time.Duration
	view     BlockView
}

type result struct {
	id       string
	interval time.Duration
	err      error
}

// Scheduler owns the poll queue. All calls into a block happen either on the
// loop goroutine or on a single worker while the loop treats the block as
// busy, so calls into one block never overlap.
type Scheduler struct {
	cfg    Config
	logger *logrus.Entry
	now    func() time.Time

	entries map[string]*entry
	order   []string
	queue   taskQueue
	seq     uint64

	events  chan input.Event
	results chan result

	mu      sync.RWMutex
	views   []BlockView
	started bool
}

// New creates a scheduler with no blocks.
func New(cfg Config, logger *logrus.Entry) *Scheduler {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Scheduler{
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry),
		events:  make(chan input.Event, 64),
		results: make(chan result),
	}
}

// AddSink registers another sink. It must be called before Run.
func (s *Scheduler) AddSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Sinks = append(s.cfg.Sinks, sink)
}

// Add registers a block. Blocks render in the order they are added.
func (s *Scheduler) Add(kind string, b block.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("cannot add block %s: scheduler already running", b.ID())
	}
	if _, exists := s.entries[b.ID()]; exists {
		return fmt.Errorf("duplicate block id %s", b.ID())
	}

	e := &entry{kind: kind, block: b}
	e.view = s.snapshot(e, time.Time{})
	s.entries[b.ID()] = e
	s.order = append(s.order, b.ID())
	s.views = s.collectLocked()
	return nil
}

// Len returns the number of blocks.
func (s *Scheduler) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Views returns the most recently published views in bar order.
func (s *Scheduler) Views() []BlockView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BlockView, len(s.views))
	copy(out, s.views)
	return out
}

// Dispatch queues a click for the block whose ID equals ev.Instance.
func (s *Scheduler) Dispatch(ctx context.Context, ev input.Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run polls every block immediately and then whenever it falls due, until
// ctx is cancelled. Updates still in flight at that point are abandoned.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.start(); err != nil {
		return err
	}

	now := s.now()
	for _, id := range s.order {
		s.schedule(id, now)
	}
	s.publish()

	for {
		for _, t := range s.queue.popDue(s.now()) {
			s.dispatchUpdate(ctx, t.id)
		}

		var timer *time.Timer
		var wake <-chan time.Time
		if next, ok := s.queue.peek(); ok {
			timer = time.NewTimer(next.due.Sub(s.now()))
			wake = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			s.logger.Debug("Scheduler stopped")
			return nil
		case <-wake:
		case res := <-s.results:
			s.handleResult(res)
		case ev := <-s.events:
			s.handleEvent(ev)
		}
		stopTimer(timer)
	}
}

// Once updates every block a single time, concurrently, and returns the
// resulting views with the errors of the blocks that failed.
func (s *Scheduler) Once(ctx context.Context) ([]BlockView, []error) {
	if err := s.start(); err != nil {
		return nil, []error{err}
	}

	results := make([]result, len(s.order))
	var wg sync.WaitGroup
	for i, id := range s.order {
		wg.Add(1)
		go func(i int, id string, b block.Block) {
			defer wg.Done()
			results[i] = runUpdate(ctx, id, b)
		}(i, id, s.entries[id].block)
	}
	wg.Wait()

	var errs []error
	now := s.now()
	for _, res := range results {
		e := s.entries[res.id]
		if res.err != nil {
			err := errors.ForBlock(res.err, e.kind, res.id)
			e.view.Err = err.Error()
			errs = append(errs, err)
			continue
		}
		e.view = s.snapshot(e, now)
	}
	s.publish()
	return s.Views(), errs
}

func (s *Scheduler) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	s.started = true
	heap.Init(&s.queue)
	return nil
}

func (s *Scheduler) schedule(id string, due time.Time) {
	s.seq++
	heap.Push(&s.queue, &task{id: id, due: due, seq: s.seq})
}

// dispatchUpdate hands a due block to a worker. Only the result re-enters
// the loop.
func (s *Scheduler) dispatchUpdate(ctx context.Context, id string) {
	e, ok := s.entries[id]
	if !ok || e.busy {
		return
	}
	e.busy = true
	go func(b block.Block) {
		res := runUpdate(ctx, id, b)
		select {
		case s.results <- res:
		case <-ctx.Done():
		}
	}(e.block)
}

func runUpdate(ctx context.Context, id string, b block.Block) (res result) {
	res.id = id
	defer func() {
		if r := recover(); r != nil {
			res.err = errors.New(errors.ErrCodeInternal, fmt.Sprintf("block panicked during update: %v", r))
		}
	}()
	res.interval, res.err = b.Update(ctx)
	return res
}

func (s *Scheduler) handleResult(res result) {
	e, ok := s.entries[res.id]
	if !ok {
		return
	}
	e.busy = false
	now := s.now()

	if res.err != nil {
		err := errors.ForBlock(res.err, e.kind, res.id)
		s.logger.WithFields(logrus.Fields{
			"block": e.kind,
			"id":    res.id,
			"code":  errors.GetCode(err),
		}).WithError(err).Warn("Block update failed")

		next := res.interval
		if next <= 0 {
			next = e.interval
		}
		if next <= 0 {
			next = s.cfg.RetryInterval
		}
		e.view.Err = err.Error()
		s.schedule(res.id, now.Add(next))
	} else {
		interval := res.interval
		if interval < 0 {
			s.logger.WithFields(logrus.Fields{
				"block":    e.kind,
				"id":       res.id,
				"interval": interval,
			}).Warn("Block returned a negative interval, using the retry interval")
			interval = s.cfg.RetryInterval
		}
		e.interval = interval
		e.view = s.snapshot(e, now)
		if interval != block.NoRefresh {
			s.schedule(res.id, now.Add(interval))
		}
	}

	pending := e.pending
	e.pending = nil
	for _, ev := range pending {
		s.click(e, ev)
	}
	s.publish()
}

func (s *Scheduler) handleEvent(ev input.Event) {
	e, ok := s.entries[ev.Instance]
	if !ok {
		s.logger.WithField("instance", ev.Instance).Debug("Dropping click for unknown block")
		return
	}
	if e.busy {
		e.pending = append(e.pending, ev)
		return
	}
	s.click(e, ev)
	s.publish()
}

func (s *Scheduler) click(e *entry, ev input.Event) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("block panicked during click: %v", r)
			}
		}()
		return e.block.Click(ev)
	}()
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"block":  e.kind,
			"id":     ev.Instance,
			"button": ev.Button.String(),
		}).WithError(err).Warn("Block click failed")
	}

	updatedErr := e.view.Err
	e.view = s.snapshot(e, e.view.UpdatedAt)
	e.view.Err = updatedErr
}

// snapshot copies the block's widgets. The caller guarantees the block is
// not running an update.
func (s *Scheduler) snapshot(e *entry, at time.Time) BlockView {
	widgets := e.block.View()
	view := BlockView{
		ID:        e.block.ID(),
		Kind:      e.kind,
		Widgets:   make([]widget.Snapshot, 0, len(widgets)),
		UpdatedAt: at,
	}
	for _, w := range widgets {
		view.Widgets = append(view.Widgets, w.Snapshot())
	}
	return view
}

func (s *Scheduler) publish() {
	s.mu.Lock()
	s.views = s.collectLocked()
	views := s.views
	sinks := s.cfg.Sinks
	s.mu.Unlock()

	for _, sink := range sinks {
		out := make([]BlockView, len(views))
		copy(out, views)
		sink.Publish(out)
	}
}

func (s *Scheduler) collectLocked() []BlockView {
	views := make([]BlockView, 0, len(s.order))
	for _, id := range s.order {
		views = append(views, s.entries[id].view)
	}
	return views
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
