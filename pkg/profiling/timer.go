// Package profiling times the phases of a command and records pprof
// profiles on request.
package profiling

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Stopper ends a timed span.
type Stopper interface {
	Stop()
}

type span struct {
	name     string
	start    time.Time
	duration time.Duration
	children []*span
	profiler *Profiler
}

// Stop records the span's duration and makes its parent current again.
func (s *span) Stop() {
	s.profiler.end(s)
}

// Profiler collects nested spans. Spans nest in the order they are started,
// so they are meant for the sequential phases of one command.
type Profiler struct {
	mu      sync.Mutex
	enabled bool
	root    *span
	stack   []*span
}

var defaultProfiler = &Profiler{}

// Enable turns on the global profiler. Spans started before are not timed.
func Enable() {
	defaultProfiler.enable(time.Now())
}

// Start begins a span named name under the innermost running span.
func Start(name string) Stopper {
	return defaultProfiler.start(name, time.Now())
}

// Summarize prints the span tree with each span's share of the total.
func Summarize(w io.Writer) {
	defaultProfiler.summarize(w, time.Now())
}

func (p *Profiler) enable(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return
	}
	p.enabled = true
	p.root = &span{name: "total", start: now, profiler: p}
	p.stack = []*span{p.root}
}

func (p *Profiler) start(name string, now time.Time) Stopper {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return noopStopper{}
	}
	parent := p.stack[len(p.stack)-1]
	s := &span{name: name, start: now, profiler: p}
	parent.children = append(parent.children, s)
	p.stack = append(p.stack, s)
	return s
}

func (p *Profiler) end(s *span) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.duration = time.Since(s.start)
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i] == s {
			p.stack = p.stack[:i]
			return
		}
	}
}

func (p *Profiler) summarize(w io.Writer, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	total := now.Sub(p.root.start)

	fmt.Fprintln(w, "\n--- Timing Profile ---")
	fmt.Fprintf(w, "total %v\n", total.Round(100*time.Microsecond))
	for _, child := range p.root.children {
		printSpan(w, child, 1, total)
	}
	fmt.Fprintln(w, "----------------------")
}

func printSpan(w io.Writer, s *span, depth int, total time.Duration) {
	share := 0.0
	if total > 0 {
		share = float64(s.duration) / float64(total) * 100
	}
	fmt.Fprintf(w, "%s- %s (%v, %.1f%%)\n",
		strings.Repeat("  ", depth-1), s.name, s.duration.Round(100*time.Microsecond), share)
	for _, child := range s.children {
		printSpan(w, child, depth+1, total)
	}
}

type noopStopper struct{}

func (noopStopper) Stop() {}
