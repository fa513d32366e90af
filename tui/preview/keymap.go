package preview

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the preview.
type KeyMap struct {
	Prev        key.Binding
	Next        key.Binding
	ClickLeft   key.Binding
	ClickMiddle key.Binding
	ClickRight  key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap is the default set of keybindings.
var DefaultKeyMap = KeyMap{
	Prev: key.NewBinding(
		key.WithKeys("left", "h", "shift+tab"),
		key.WithHelp("←/h", "previous block"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l", "tab"),
		key.WithHelp("→/l", "next block"),
	),
	ClickLeft: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "left click"),
	),
	ClickMiddle: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "middle click"),
	),
	ClickRight: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "right click"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "quit"),
	),
}

// ShortHelp returns keybindings to be shown in the compact help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.ClickLeft, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next},
		{k.ClickLeft, k.ClickMiddle, k.ClickRight},
		{k.Help, k.Quit},
	}
}
