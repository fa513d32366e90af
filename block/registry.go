package block

import (
	"fmt"
	"sort"
	"sync"

	"github.com/grovetools/statusbar/command"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/widget"
	"github.com/sirupsen/logrus"
)

// Env carries the shared collaborators handed to every block constructor.
type Env struct {
	Widgets *widget.Factory
	Runner  command.Runner
	Logger  *logrus.Entry
}

// Constructor builds a block from its raw configuration record. The id is a
// freshly allocated identity token.
type Constructor func(id string, raw map[string]interface{}, env Env) (Block, error)

// Registry maps block kinds to constructors.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Constructor)}
}

// Register adds a block kind. Registering the same kind twice is an error.
func (r *Registry) Register(kind string, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if kind == "" {
		return fmt.Errorf("block kind cannot be empty")
	}
	if _, exists := r.kinds[kind]; exists {
		return fmt.Errorf("block kind '%s' already registered", kind)
	}
	r.kinds[kind] = ctor
	return nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build constructs one block of the given kind with a new identity.
func (r *Registry) Build(kind string, raw map[string]interface{}, env Env) (Block, error) {
	r.mu.RLock()
	ctor, ok := r.kinds[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.UnknownBlock(kind)
	}

	if raw == nil {
		raw = map[string]interface{}{}
	}
	id := NewID()
	if env.Logger != nil {
		env.Logger = env.Logger.WithFields(logrus.Fields{"block": kind, "id": id})
	}
	return ctor(id, raw, env)
}

// BuildAll constructs every configured block in order. A block that fails
// to build is skipped and its error returned alongside the others; the rest
// of the bar is unaffected.
func (r *Registry) BuildAll(configs []Config, env Env) ([]Built, []error) {
	var built []Built
	var errs []error
	for i, cfg := range configs {
		b, err := r.Build(cfg.Kind, cfg.Options, env)
		if err != nil {
			errs = append(errs, fmt.Errorf("block #%d (%s): %w", i+1, cfg.Kind, err))
			continue
		}
		built = append(built, Built{Kind: cfg.Kind, Block: b})
	}
	return built, errs
}

// Config is one configured block: its kind and the remaining options.
type Config struct {
	Kind    string
	Options map[string]interface{}
}

// Built pairs a constructed block with its kind.
type Built struct {
	Kind  string
	Block Block
}
