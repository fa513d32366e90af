// Package input describes click events delivered to blocks.
package input

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MouseButton identifies the button of a click event.
type MouseButton int

const (
	Unknown MouseButton = iota
	Left
	Middle
	Right
	WheelUp
	WheelDown
	// 6 and 7 are horizontal scroll on most X servers and are not reported.
	Back MouseButton = iota + 2
	Forward
)

var buttonNames = map[MouseButton]string{
	Unknown:   "unknown",
	Left:      "left",
	Middle:    "middle",
	Right:     "right",
	WheelUp:   "wheel_up",
	WheelDown: "wheel_down",
	Back:      "back",
	Forward:   "forward",
}

func (b MouseButton) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return fmt.Sprintf("button(%d)", int(b))
}

// ParseButton accepts a button name or its X11 button number.
func ParseButton(s string) MouseButton {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		b := MouseButton(n)
		if _, ok := buttonNames[b]; ok {
			return b
		}
		return Unknown
	}
	for b, name := range buttonNames {
		if name == s {
			return b
		}
	}
	return Unknown
}

// MarshalJSON encodes the button by name.
func (b MouseButton) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON accepts either the X11 button number or a name.
func (b *MouseButton) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*b = ParseButton(strconv.Itoa(n))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("button must be a number or a name: %w", err)
	}
	*b = ParseButton(s)
	return nil
}

// Event is a click on a rendered widget. Instance is the identity of the
// block that owns the widget and is used for routing; Name is the element
// name of the clicked widget and is empty when the source did not report one.
type Event struct {
	Name     string      `json:"name,omitempty"`
	Instance string      `json:"instance"`
	Button   MouseButton `json:"button"`
}

// IsPrimary reports whether the event is a left click on the named element.
func (e Event) IsPrimary(name string) bool {
	return e.Name != "" && e.Name == name && e.Button == Left
}
