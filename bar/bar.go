// Package bar assembles a running bar from a configuration: it builds one
// block per [[block]] record and hands them to a scheduler in file order.
package bar

import (
	"github.com/grovetools/statusbar/block"
	"github.com/grovetools/statusbar/blocks"
	"github.com/grovetools/statusbar/command"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/render"
	"github.com/grovetools/statusbar/scheduler"
	"github.com/grovetools/statusbar/tui/theme"
	"github.com/grovetools/statusbar/widget"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
)

// Options holds the collaborators shared by every block.
type Options struct {
	Registry *block.Registry
	Runner   command.Runner
	Logger   *logrus.Entry
	Sinks    []scheduler.Sink
}

func (o *Options) defaults() {
	if o.Registry == nil {
		o.Registry = blocks.NewRegistry()
	}
	if o.Runner == nil {
		o.Runner = command.NewShellRunner()
	}
	if o.Logger == nil {
		o.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
}

// Build creates a scheduler holding every block of cfg that could be
// constructed. Blocks that fail are left out and their errors returned;
// an error is fatal only when it is not about a single block.
func Build(cfg *config.Config, opts Options) (*scheduler.Scheduler, []error) {
	opts.defaults()

	factory, err := widget.NewFactory(cfg.Icons)
	if err != nil {
		return nil, []error{errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid icon set")}
	}

	configs := make([]block.Config, 0, len(cfg.Blocks))
	for _, b := range cfg.Blocks {
		configs = append(configs, block.Config{Kind: b.Kind(), Options: b.Options()})
	}

	env := block.Env{Widgets: factory, Runner: opts.Runner, Logger: opts.Logger}
	built, errs := opts.Registry.BuildAll(configs, env)

	s := scheduler.New(scheduler.Config{
		RetryInterval: cfg.RetryInterval,
		Sinks:         opts.Sinks,
	}, opts.Logger)
	for _, b := range built {
		if err := s.Add(b.Kind, b.Block); err != nil {
			errs = append(errs, err)
		}
	}
	for _, err := range errs {
		opts.Logger.WithError(err).Warn("Skipping block")
	}
	return s, errs
}

// Renderer returns the renderer described by cfg for the given profile.
func Renderer(cfg *config.Config, profile termenv.Profile) *render.Renderer {
	th := theme.DefaultTheme
	if cfg.Theme != "" {
		th = theme.NewThemeWithName(cfg.Theme)
	}
	opts := []render.Option{render.WithProfile(profile)}
	if cfg.Separator != "" {
		opts = append(opts, render.WithSeparator(cfg.Separator))
	}
	return render.New(th, opts...)
}
