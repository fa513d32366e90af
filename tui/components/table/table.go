// Package table builds the bordered tables printed by the statusbar CLI.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/statusbar/tui/theme"
)

// CellStyleFunc may restyle a data cell. It receives the base style.
type CellStyleFunc func(row, col int, base lipgloss.Style) lipgloss.Style

// Builder provides a fluent interface for creating styled tables
type Builder struct {
	theme    *theme.Theme
	headers  []string
	rows     [][]string
	bordered bool
	cell     CellStyleFunc
}

// NewBuilder creates a new table builder
func NewBuilder() *Builder {
	return &Builder{
		theme:    theme.DefaultTheme,
		bordered: true,
	}
}

// WithTheme sets the theme
func (b *Builder) WithTheme(t *theme.Theme) *Builder {
	b.theme = t
	return b
}

// WithBorder enables or disables the border
func (b *Builder) WithBorder(bordered bool) *Builder {
	b.bordered = bordered
	return b
}

// WithHeaders sets the table headers
func (b *Builder) WithHeaders(headers ...string) *Builder {
	b.headers = headers
	return b
}

// WithRows appends rows.
func (b *Builder) WithRows(rows ...[]string) *Builder {
	b.rows = append(b.rows, rows...)
	return b
}

// WithCellStyle installs a per-cell style hook.
func (b *Builder) WithCellStyle(fn CellStyleFunc) *Builder {
	b.cell = fn
	return b
}

// Build creates the styled table
func (b *Builder) Build() *ltable.Table {
	t := b.theme
	header := lipgloss.NewStyle().Bold(true).Foreground(t.Colors.Blue).Padding(0, 1)
	base := lipgloss.NewStyle().Padding(0, 1)

	tbl := ltable.New().Headers(b.headers...).Rows(b.rows...)
	if b.bordered {
		tbl = tbl.
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(t.Colors.Border))
	} else {
		tbl = tbl.Border(lipgloss.HiddenBorder())
	}

	return tbl.StyleFunc(func(row, col int) lipgloss.Style {
		if row == ltable.HeaderRow {
			return header
		}
		if b.cell != nil {
			return b.cell(row, col, base)
		}
		return base
	})
}

// Render is shorthand for Build().String().
func (b *Builder) Render() string {
	return b.Build().String()
}

// SimpleTable creates a basic table with headers and rows
func SimpleTable(headers []string, rows [][]string) string {
	return NewBuilder().WithHeaders(headers...).WithRows(rows...).Render()
}
