// Package store holds the daemon's latest block views and fans changes out
// to subscribers.
package store

import "github.com/grovetools/statusbar/scheduler"

// UpdateType defines what kind of data changed.
type UpdateType string

const (
	UpdateBlocks       UpdateType = "blocks"
	UpdateConfigReload UpdateType = "config_reload"
	UpdateConfigError  UpdateType = "config_error"
)

// Update represents a change to the state.
type Update struct {
	Type   UpdateType
	Source string // "scheduler" or "config"
	Views  []scheduler.BlockView
	File   string // config file, for config updates
	Err    string // reload failure, for UpdateConfigError
}
