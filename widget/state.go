// Package widget holds the renderable state a block exposes to the bar.
package widget

import (
	"fmt"
	"strings"
)

// State is the visual severity of a widget.
type State int

const (
	Idle State = iota
	Info
	Good
	Warning
	Critical
)

var stateNames = map[State]string{
	Idle:     "idle",
	Info:     "info",
	Good:     "good",
	Warning:  "warning",
	Critical: "critical",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState is the inverse of String.
func ParseState(name string) (State, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for s, n := range stateNames {
		if n == normalized {
			return s, nil
		}
	}
	return Idle, fmt.Errorf("unknown widget state %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if _, ok := stateNames[s]; !ok {
		return nil, fmt.Errorf("unknown widget state %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
