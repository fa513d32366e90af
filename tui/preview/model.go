// Package preview is an interactive terminal preview of the bar. One block
// is selected at a time and can be clicked from the keyboard, which makes it
// possible to try click actions without a panel.
package preview

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/render"
	"github.com/grovetools/statusbar/scheduler"
	"github.com/grovetools/statusbar/tui/theme"
)

// Dispatcher delivers clicks. *scheduler.Scheduler implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev input.Event) error
}

// viewsMsg carries a newly published set of views.
type viewsMsg []scheduler.BlockView

// clickedMsg reports the outcome of a dispatched click.
type clickedMsg struct {
	ev  input.Event
	err error
}

// Model is the bubbletea model of the preview.
type Model struct {
	ctx      context.Context
	renderer *render.Renderer
	theme    *theme.Theme
	updates  <-chan []scheduler.BlockView
	clicks   Dispatcher
	keys     KeyMap
	help     help.Model

	views  []scheduler.BlockView
	cursor int
	status string
	width  int
}

// New creates a preview reading views from updates and sending clicks to
// d. ctx bounds click delivery.
func New(ctx context.Context, r *render.Renderer, th *theme.Theme, updates <-chan []scheduler.BlockView, d Dispatcher) Model {
	if th == nil {
		th = theme.DefaultTheme
	}
	return Model{
		ctx:      ctx,
		renderer: r,
		theme:    th,
		updates:  updates,
		clicks:   d,
		keys:     DefaultKeyMap,
		help:     help.New(),
	}
}

// Init is the first command that will be executed.
func (m Model) Init() tea.Cmd {
	return m.waitForViews()
}

func (m Model) waitForViews() tea.Cmd {
	return func() tea.Msg {
		views, ok := <-m.updates
		if !ok {
			return nil
		}
		return viewsMsg(views)
	}
}

// Update handles messages and updates the model accordingly.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case viewsMsg:
		m.views = msg
		if m.cursor >= len(m.views) {
			m.cursor = max(len(m.views)-1, 0)
		}
		return m, m.waitForViews()

	case clickedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("click failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("%s click sent to %s", msg.ev.Button, msg.ev.Name)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Prev):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Next):
			if m.cursor < len(m.views)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.ClickLeft):
			return m, m.click(input.Left)
		case key.Matches(msg, m.keys.ClickMiddle):
			return m, m.click(input.Middle)
		case key.Matches(msg, m.keys.ClickRight):
			return m, m.click(input.Right)
		}
	}
	return m, nil
}

// click targets the first widget of the selected block, the way a bar
// reports a click on a single-widget block.
func (m Model) click(button input.MouseButton) tea.Cmd {
	v, ok := m.Selected()
	if !ok {
		return nil
	}
	ev := input.Event{Instance: v.ID, Name: v.Kind, Button: button}
	if len(v.Widgets) > 0 {
		ev.Name = v.Widgets[0].Name
	}
	ctx, d := m.ctx, m.clicks
	return func() tea.Msg {
		return clickedMsg{ev: ev, err: d.Dispatch(ctx, ev)}
	}
}

// Selected returns the view of the selected block.
func (m Model) Selected() (scheduler.BlockView, bool) {
	if m.cursor < 0 || m.cursor >= len(m.views) {
		return scheduler.BlockView{}, false
	}
	return m.views[m.cursor], true
}

// View renders the bar with the selected block bracketed, a detail line
// and the help bar.
func (m Model) View() string {
	if m.views == nil {
		return m.theme.Muted.Render("Waiting for blocks...") + "\n"
	}
	if len(m.views) == 0 {
		return m.theme.Muted.Render("No blocks configured.") + "\n\n" + m.help.View(m.keys) + "\n"
	}

	bracket := m.theme.Accent
	parts := make([]string, 0, len(m.views))
	for i, v := range m.views {
		out := m.renderer.Block(v)
		if out == "" {
			out = m.theme.Muted.Render("(" + v.Kind + ")")
		}
		if i == m.cursor {
			out = bracket.Render("[") + out + bracket.Render("]")
		}
		parts = append(parts, out)
	}

	var b strings.Builder
	b.WriteString(strings.Join(parts, m.renderer.Separator()))
	b.WriteString("\n\n")

	v, _ := m.Selected()
	b.WriteString(m.theme.Muted.Render(fmt.Sprintf("%s  %s", v.Kind, v.ID)))
	b.WriteString("\n")
	if v.Err != "" {
		b.WriteString(m.theme.Error.Render(v.Err))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.theme.Info.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
