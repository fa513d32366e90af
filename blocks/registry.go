// Package blocks wires the built-in block kinds into a registry.
package blocks

import (
	"github.com/grovetools/statusbar/block"
	"github.com/grovetools/statusbar/blocks/pamac"
)

// Builtin maps every built-in kind to its constructor.
var Builtin = map[string]block.Constructor{
	pamac.Kind: pamac.New,
}

// NewRegistry returns a registry holding every built-in kind.
func NewRegistry() *block.Registry {
	r := block.NewRegistry()
	for kind, ctor := range Builtin {
		// Builtin keys are unique, so Register cannot fail here.
		_ = r.Register(kind, ctor)
	}
	return r
}
