package input

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MalformedEventError reports a line that is not a valid click event. The
// decoder can continue past it.
type MalformedEventError struct {
	Line int
	Err  error
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("line %d: invalid click event: %v", e.Line, e.Err)
}

func (e *MalformedEventError) Unwrap() error { return e.Err }

// Decoder reads a click stream: one JSON object per line. An opening "["
// line and leading "," separators are tolerated so streams written for
// i3bar-compatible bars decode unchanged.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scanner: bufio.NewScanner(r)}
}

// Next returns the next event, or io.EOF when the stream ends. A
// *MalformedEventError leaves the decoder usable; any other error is final.
func (d *Decoder) Next() (Event, error) {
	for d.scanner.Scan() {
		d.line++
		raw := bytes.TrimSpace(d.scanner.Bytes())
		raw = bytes.TrimPrefix(raw, []byte("["))
		raw = bytes.TrimSpace(bytes.TrimPrefix(bytes.TrimSpace(raw), []byte(",")))
		if len(raw) == 0 || bytes.Equal(raw, []byte("]")) {
			continue
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return Event{}, &MalformedEventError{Line: d.line, Err: err}
		}
		return ev, nil
	}
	if err := d.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}
