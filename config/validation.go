package config

import (
	"fmt"

	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/tui/theme"
	"github.com/grovetools/statusbar/widget"
)

// Validate checks what the schema cannot: theme names and aliases, and
// that every block names a kind. Whether a kind exists is decided when
// blocks are built, so one bad block does not reject the whole file.
func (c *Config) Validate() error {
	if c.Theme != "" && !theme.Valid(c.Theme) {
		return errors.ConfigInvalid(fmt.Sprintf("unknown theme '%s' (available: %v)", c.Theme, theme.Names())).
			WithDetail("field", "theme")
	}

	if c.Icons != "" && !validIconSet(c.Icons) {
		return errors.ConfigInvalid(fmt.Sprintf("unknown icon set '%s' (available: %v)", c.Icons, widget.IconSetNames())).
			WithDetail("field", "icons")
	}

	if c.RetryInterval < 0 {
		return errors.ConfigInvalid("retry_interval cannot be negative").WithDetail("field", "retry_interval")
	}

	if c.Daemon.DebounceMs < 0 {
		return errors.ConfigInvalid("daemon.debounce_ms cannot be negative").WithDetail("field", "daemon.debounce_ms")
	}

	for i, b := range c.Blocks {
		if b.Kind() == "" {
			return errors.ConfigInvalid(fmt.Sprintf("block %d has no '%s' key", i, KindKey)).
				WithDetail("field", fmt.Sprintf("block[%d]", i))
		}
	}
	return nil
}

func validIconSet(name string) bool {
	for _, n := range widget.IconSetNames() {
		if n == name {
			return true
		}
	}
	return false
}
