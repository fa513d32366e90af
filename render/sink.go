package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/grovetools/statusbar/scheduler"
	"github.com/sirupsen/logrus"
)

// LineSink writes one rendered line per published change. Identical
// consecutive lines are written once.
type LineSink struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *Renderer
	logger   *logrus.Entry
	last     string
	wrote    bool
}

// NewLineSink creates a sink writing to w.
func NewLineSink(w io.Writer, r *Renderer, logger *logrus.Entry) *LineSink {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &LineSink{w: w, renderer: r, logger: logger}
}

// Publish implements scheduler.Sink.
func (s *LineSink) Publish(views []scheduler.BlockView) {
	line := s.renderer.Line(views)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wrote && line == s.last {
		return
	}
	if _, err := fmt.Fprintln(s.w, line); err != nil {
		s.logger.WithError(err).Error("Failed to write bar line")
		return
	}
	s.last = line
	s.wrote = true
}

// JSONSink writes every published view set as one JSON array per line, so
// a consumer learns each block's id and can address clicks to it.
type JSONSink struct {
	mu     sync.Mutex
	w      io.Writer
	logger *logrus.Entry
}

// NewJSONSink creates a sink writing to w.
func NewJSONSink(w io.Writer, logger *logrus.Entry) *JSONSink {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &JSONSink{w: w, logger: logger}
}

// Publish implements scheduler.Sink.
func (s *JSONSink) Publish(views []scheduler.BlockView) {
	data, err := json.Marshal(views)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode views")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		s.logger.WithError(err).Error("Failed to write views")
	}
}

var (
	_ scheduler.Sink = (*LineSink)(nil)
	_ scheduler.Sink = (*JSONSink)(nil)
)
