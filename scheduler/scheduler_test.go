package scheduler

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grovetools/statusbar/block"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/widget"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBlock counts updates and records clicks. When gate is set, Update
// waits for a value on it before returning.
type fakeBlock struct {
	id       string
	interval time.Duration
	w        *widget.Widget

	mu       sync.Mutex
	updates  int
	clicks   []input.Event
	err      error
	panicky  bool
	gate     chan struct{}
	active   int32
	overlaps int32
	started  chan struct{}
}

func newFakeBlock(t *testing.T, interval time.Duration) *fakeBlock {
	t.Helper()
	f, err := widget.NewFactory(widget.IconsNone)
	require.NoError(t, err)
	w, err := f.Create("fake")
	require.NoError(t, err)
	return &fakeBlock{
		id:       block.NewID(),
		interval: interval,
		w:        w,
		started:  make(chan struct{}, 100),
	}
}

func (b *fakeBlock) ID() string { return b.id }

func (b *fakeBlock) Update(ctx context.Context) (time.Duration, error) {
	if atomic.AddInt32(&b.active, 1) > 1 {
		atomic.AddInt32(&b.overlaps, 1)
	}
	defer atomic.AddInt32(&b.active, -1)

	select {
	case b.started <- struct{}{}:
	default:
	}
	b.mu.Lock()
	gate := b.gate
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.panicky {
		panic("boom")
	}
	if b.err != nil {
		return 0, b.err
	}
	b.updates++
	b.w.SetText(fmt.Sprint(b.updates)).SetState(widget.Info)
	return b.interval, nil
}

func (b *fakeBlock) View() []*widget.Widget {
	if atomic.LoadInt32(&b.active) > 0 {
		atomic.AddInt32(&b.overlaps, 1)
	}
	return []*widget.Widget{b.w}
}

func (b *fakeBlock) Click(ev input.Event) error {
	if atomic.LoadInt32(&b.active) > 0 {
		atomic.AddInt32(&b.overlaps, 1)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clicks = append(b.clicks, ev)
	b.w.SetState(widget.Warning)
	return nil
}

func (b *fakeBlock) counts() (updates, clicks int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updates, len(b.clicks)
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func startScheduler(t *testing.T, s *Scheduler) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestAddRejectsDuplicates(t *testing.T) {
	s := New(Config{}, quietLogger())
	b := newFakeBlock(t, time.Second)
	require.NoError(t, s.Add("fake", b))
	require.Error(t, s.Add("fake", b))
	assert.Equal(t, 1, s.Len())

	views := s.Views()
	require.Len(t, views, 1)
	assert.Equal(t, b.ID(), views[0].ID)
	assert.Equal(t, "fake", views[0].Kind)
}

func TestRunPollsAndReschedules(t *testing.T) {
	s := New(Config{}, quietLogger())
	b := newFakeBlock(t, 10*time.Millisecond)
	require.NoError(t, s.Add("fake", b))
	startScheduler(t, s)

	require.Eventually(t, func() bool {
		updates, _ := b.counts()
		return updates >= 3
	}, 2*time.Second, 5*time.Millisecond)

	require.Error(t, s.Add("fake", newFakeBlock(t, time.Second)), "adding after start must fail")
}

func TestNoRefreshPollsOnce(t *testing.T) {
	s := New(Config{}, quietLogger())
	b := newFakeBlock(t, block.NoRefresh)
	require.NoError(t, s.Add("fake", b))
	startScheduler(t, s)

	require.Eventually(t, func() bool {
		updates, _ := b.counts()
		return updates == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	updates, _ := b.counts()
	assert.Equal(t, 1, updates)
}

func TestUpdatesNeverOverlap(t *testing.T) {
	s := New(Config{}, quietLogger())
	b := newFakeBlock(t, time.Millisecond)
	gate := make(chan struct{})
	b.gate = gate
	require.NoError(t, s.Add("fake", b))
	startScheduler(t, s)

	for i := 0; i < 5; i++ {
		select {
		case <-b.started:
		case <-time.After(time.Second):
			t.Fatal("update did not start")
		}
		// The interval has long elapsed; a second update must not start.
		time.Sleep(20 * time.Millisecond)
		select {
		case <-b.started:
			t.Fatal("update started while previous one was running")
		default:
		}
		gate <- struct{}{}
	}
	assert.Zero(t, atomic.LoadInt32(&b.overlaps))
}

func TestClickWaitsForRunningUpdate(t *testing.T) {
	s := New(Config{}, quietLogger())
	b := newFakeBlock(t, time.Hour)
	gate := make(chan struct{})
	b.gate = gate
	require.NoError(t, s.Add("fake", b))
	startScheduler(t, s)

	<-b.started
	require.NoError(t, s.Dispatch(context.Background(), input.Event{Instance: b.ID(), Name: "fake", Button: input.Left}))

	time.Sleep(30 * time.Millisecond)
	_, clicks := b.counts()
	assert.Equal(t, 0, clicks, "click must wait for the update")

	close(gate)
	require.Eventually(t, func() bool {
		_, clicks := b.counts()
		return clicks == 1
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&b.overlaps))
}

func TestClickRoutingByInstance(t *testing.T) {
	s := New(Config{}, quietLogger())
	a := newFakeBlock(t, time.Hour)
	b := newFakeBlock(t, time.Hour)
	require.NoError(t, s.Add("fake", a))
	require.NoError(t, s.Add("fake", b))

	published := make(chan []BlockView, 100)
	s.AddSink(SinkFunc(func(v []BlockView) {
		select {
		case published <- v:
		default:
		}
	}))
	startScheduler(t, s)

	require.Eventually(t, func() bool {
		ua, _ := a.counts()
		ub, _ := b.counts()
		return ua == 1 && ub == 1
	}, time.Second, 5*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, s.Dispatch(ctx, input.Event{Instance: b.ID(), Name: "fake", Button: input.Right}))
	require.NoError(t, s.Dispatch(ctx, input.Event{Instance: "nobody", Name: "fake", Button: input.Left}))

	require.Eventually(t, func() bool {
		_, cb := b.counts()
		return cb == 1
	}, time.Second, 5*time.Millisecond)
	_, ca := a.counts()
	assert.Equal(t, 0, ca)

	// The click changed the widget state and the change was published.
	require.Eventually(t, func() bool {
		views := s.Views()
		return views[1].Widgets[0].State == widget.Warning
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, widget.Info, s.Views()[0].Widgets[0].State)
}

func TestNegativeIntervalUsesRetryInterval(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := New(Config{RetryInterval: 50 * time.Millisecond}, logrus.NewEntry(logger))
	b := newFakeBlock(t, time.Duration(math.MinInt64))
	require.NoError(t, s.Add("fake", b))
	startScheduler(t, s)

	time.Sleep(200 * time.Millisecond)
	updates, _ := b.counts()
	assert.GreaterOrEqual(t, updates, 1)
	assert.LessOrEqual(t, updates, 6, "negative interval must not make the block due immediately")

	require.Eventually(t, func() bool {
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.WarnLevel && e.Data["id"] == b.ID() {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestFailedUpdateIsRetriedAndLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := New(Config{RetryInterval: 10 * time.Millisecond}, logrus.NewEntry(logger))
	failing := newFakeBlock(t, time.Hour)
	failing.err = errors.CommandLaunch("fake", fmt.Errorf("not found"))
	require.NoError(t, s.Add("fake", failing))
	startScheduler(t, s)

	// Retried at RetryInterval because no interval was ever reported.
	for i := 0; i < 3; i++ {
		select {
		case <-failing.started:
		case <-time.After(time.Second):
			t.Fatal("failed block was not retried")
		}
	}

	require.Eventually(t, func() bool {
		return s.Views()[0].Err != ""
	}, time.Second, 5*time.Millisecond)
	view := s.Views()[0]
	assert.Contains(t, view.Err, "COMMAND_LAUNCH_FAILED")
	assert.Equal(t, "", view.Widgets[0].Text)

	require.Eventually(t, func() bool {
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.WarnLevel && e.Data["id"] == failing.ID() {
				return e.Data["code"] == errors.ErrCodeCommandLaunch
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestFailureAfterSuccessReusesInterval(t *testing.T) {
	s := New(Config{RetryInterval: time.Hour}, quietLogger())
	b := newFakeBlock(t, 20*time.Millisecond)
	require.NoError(t, s.Add("fake", b))
	startScheduler(t, s)

	require.Eventually(t, func() bool {
		return s.Views()[0].Widgets[0].Text == "1"
	}, time.Second, 5*time.Millisecond)

	b.mu.Lock()
	b.err = errors.OutputDecode("fake")
	lastText := fmt.Sprint(b.updates)
	b.mu.Unlock()

	// With RetryInterval at an hour, further attempts prove the last
	// successful interval is reused.
	drain := func() {
		for {
			select {
			case <-b.started:
			default:
				return
			}
		}
	}
	drain()
	for i := 0; i < 2; i++ {
		select {
		case <-b.started:
		case <-time.After(time.Second):
			t.Fatal("failed block was not retried at its interval")
		}
	}
	require.Eventually(t, func() bool {
		return s.Views()[0].Err != ""
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, lastText, s.Views()[0].Widgets[0].Text, "prior state stays displayed")
}

func TestPanickingBlockDoesNotStopLoop(t *testing.T) {
	s := New(Config{RetryInterval: time.Hour}, quietLogger())
	bad := newFakeBlock(t, time.Hour)
	bad.panicky = true
	good := newFakeBlock(t, 10*time.Millisecond)
	require.NoError(t, s.Add("bad", bad))
	require.NoError(t, s.Add("good", good))
	startScheduler(t, s)

	require.Eventually(t, func() bool {
		updates, _ := good.counts()
		return updates >= 3
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return s.Views()[0].Err != ""
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, s.Views()[0].Err, "panicked")
}

func TestOnce(t *testing.T) {
	s := New(Config{}, quietLogger())
	ok := newFakeBlock(t, time.Minute)
	bad := newFakeBlock(t, time.Minute)
	bad.err = errors.OutputDecode("fake")
	require.NoError(t, s.Add("ok", ok))
	require.NoError(t, s.Add("bad", bad))

	views, errs := s.Once(context.Background())
	require.Len(t, views, 2)
	require.Len(t, errs, 1)
	assert.Equal(t, bad.ID(), errors.BlockID(errs[0]))
	assert.Equal(t, "1", views[0].Widgets[0].Text)
	assert.NotEmpty(t, views[1].Err)

	_, errs = s.Once(context.Background())
	require.Len(t, errs, 1, "a scheduler runs only once")
}
