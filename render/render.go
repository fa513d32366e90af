// Package render turns block views into a single bar line.
package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/statusbar/scheduler"
	"github.com/grovetools/statusbar/tui/theme"
	"github.com/grovetools/statusbar/widget"
	"github.com/muesli/termenv"
)

// DefaultSeparator sits between blocks.
const DefaultSeparator = " | "

// ErrorMarker is appended to a block whose last update failed.
const ErrorMarker = "!"

// Renderer styles widgets by severity using a theme.
type Renderer struct {
	theme     *theme.Theme
	renderer  *lipgloss.Renderer
	separator string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSeparator sets the text placed between blocks.
func WithSeparator(sep string) Option {
	return func(r *Renderer) {
		r.separator = sep
	}
}

// WithProfile sets the color profile; termenv.Ascii renders plain text.
func WithProfile(p termenv.Profile) Option {
	return func(r *Renderer) {
		r.renderer.SetColorProfile(p)
	}
}

// New creates a renderer for th. A nil theme uses theme.DefaultTheme.
func New(th *theme.Theme, opts ...Option) *Renderer {
	if th == nil {
		th = theme.DefaultTheme
	}
	r := &Renderer{
		theme:     th,
		renderer:  lipgloss.NewRenderer(io.Discard),
		separator: DefaultSeparator,
	}
	r.renderer.SetColorProfile(lipgloss.ColorProfile())
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Style returns the style for a severity.
func (r *Renderer) Style(s widget.State) lipgloss.Style {
	var style lipgloss.Style
	switch s {
	case widget.Info:
		style = r.theme.Info
	case widget.Good:
		style = r.theme.Success
	case widget.Warning:
		style = r.theme.Warning
	case widget.Critical:
		style = r.theme.Error
	default:
		style = r.theme.Normal
	}
	return style.Renderer(r.renderer)
}

// Widget renders one widget, or "" when it has nothing to show.
func (r *Renderer) Widget(s widget.Snapshot) string {
	label := s.Label()
	if label == "" {
		return ""
	}
	return r.Style(s.State).Render(label)
}

// Block renders every widget of one block separated by spaces.
func (r *Renderer) Block(v scheduler.BlockView) string {
	parts := make([]string, 0, len(v.Widgets)+1)
	for _, w := range v.Widgets {
		if out := r.Widget(w); out != "" {
			parts = append(parts, out)
		}
	}
	if v.Err != "" {
		parts = append(parts, r.theme.Error.Renderer(r.renderer).Render(ErrorMarker))
	}
	return strings.Join(parts, " ")
}

// Line renders all blocks in order, skipping blocks with nothing to show.
func (r *Renderer) Line(views []scheduler.BlockView) string {
	sep := r.Separator()
	parts := make([]string, 0, len(views))
	for _, v := range views {
		if out := r.Block(v); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, sep)
}

// Separator returns the styled text placed between blocks.
func (r *Renderer) Separator() string {
	return r.theme.Muted.Renderer(r.renderer).Render(r.separator)
}
