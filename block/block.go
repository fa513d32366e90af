// Package block defines the contract every status bar block implements and
// the registry that builds blocks from configuration.
package block

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/widget"
)

// NoRefresh returned from Update asks the scheduler not to poll the block again.
const NoRefresh time.Duration = 0

// Block is one pluggable element of the bar.
//
// The scheduler serializes every call into a block: Update, View and Click
// are never invoked concurrently on the same instance. Update may block on
// external processes; it runs off the scheduler loop.
type Block interface {
	// ID returns the identity token assigned at construction.
	ID() string

	// Update refreshes the block's widgets and returns the delay before the
	// next poll. On error the widgets are left as they were.
	Update(ctx context.Context) (time.Duration, error)

	// View returns the block's widgets for rendering.
	View() []*widget.Widget

	// Click handles a click routed to this block.
	Click(ev input.Event) error
}

// NewID returns a fresh identity token: a random UUID in 32-character hex
// form.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
