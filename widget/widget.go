package widget

import (
	"fmt"
	"strings"
)

// Widget is a single clickable element of the bar. It is owned by exactly one
// block and mutated only from that block's Update and Click.
type Widget struct {
	name  string
	icon  string
	text  string
	state State
	glyph func(string) string
}

// Snapshot is an immutable copy of a widget, safe to hand to renderers and
// other goroutines.
type Snapshot struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Text  string `json:"text"`
	State State  `json:"state"`
}

// Factory creates widgets bound to one icon set.
type Factory struct {
	iconSet string
	icons   map[string]string
}

// NewFactory returns a factory for the named icon set ("" selects awesome).
func NewFactory(iconSet string) (*Factory, error) {
	icons, err := lookupIconSet(iconSet)
	if err != nil {
		return nil, err
	}
	if iconSet == "" {
		iconSet = IconsAwesome
	}
	return &Factory{iconSet: iconSet, icons: icons}, nil
}

// IconSet returns the name of the factory's icon set.
func (f *Factory) IconSet() string {
	return f.iconSet
}

// Create returns a blank Idle widget. The name is the element name reported
// back in click events.
func (f *Factory) Create(name string) (*Widget, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("widget name cannot be empty")
	}
	return &Widget{
		name:  name,
		state: Idle,
		glyph: f.Glyph,
	}, nil
}

// Glyph resolves an icon name; unknown names resolve to "".
func (f *Factory) Glyph(icon string) string {
	return f.icons[icon]
}

// WithIcon sets the icon by name.
func (w *Widget) WithIcon(icon string) *Widget {
	w.icon = icon
	return w
}

// SetText replaces the display text.
func (w *Widget) SetText(text string) *Widget {
	w.text = text
	return w
}

// SetState replaces the severity.
func (w *Widget) SetState(s State) *Widget {
	w.state = s
	return w
}

func (w *Widget) Name() string { return w.name }
func (w *Widget) Icon() string { return w.icon }
func (w *Widget) Text() string { return w.text }
func (w *Widget) State() State { return w.state }

// Snapshot copies the widget with its icon resolved to a glyph.
func (w *Widget) Snapshot() Snapshot {
	icon := w.icon
	if w.glyph != nil && icon != "" {
		icon = w.glyph(icon)
	}
	return Snapshot{
		Name:  w.name,
		Icon:  icon,
		Text:  w.text,
		State: w.state,
	}
}

// Label joins icon and text, omitting whichever is empty.
func (s Snapshot) Label() string {
	switch {
	case s.Icon == "":
		return s.Text
	case s.Text == "":
		return s.Icon
	default:
		return s.Icon + " " + s.Text
	}
}
