package preview

import "github.com/grovetools/statusbar/scheduler"

// Sink hands published views to the preview. Only the latest set matters,
// so a slow reader sees the newest views and skips the ones in between.
type Sink struct {
	ch chan []scheduler.BlockView
}

// NewSink creates a sink; Updates returns its channel.
func NewSink() *Sink {
	return &Sink{ch: make(chan []scheduler.BlockView, 1)}
}

// Updates is the channel the model reads.
func (s *Sink) Updates() <-chan []scheduler.BlockView {
	return s.ch
}

// Publish implements scheduler.Sink. It never blocks: a pending set that
// was not read yet is replaced.
func (s *Sink) Publish(views []scheduler.BlockView) {
	for {
		select {
		case s.ch <- views:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

var _ scheduler.Sink = (*Sink)(nil)
