// Package pamac provides a block that shows the number of pending package
// updates reported by pamac and opens the pamac manager when clicked.
package pamac

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/grovetools/statusbar/block"
	"github.com/grovetools/statusbar/command"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/widget"
	"github.com/sirupsen/logrus"
)

const (
	// Kind is the block name used in configuration and as the widget's
	// element name.
	Kind = "pamac"

	// DefaultInterval is the poll interval when none is configured.
	DefaultInterval = 600 * time.Second

	checkScript   = "pamac checkupdates -q"
	managerScript = "pamac-manager --updates"
	icon          = "update"
)

// Config is the pamac block's configuration record.
type Config struct {
	Interval time.Duration `yaml:"interval" jsonschema:"description=Seconds between update checks (default 600)"`
}

// DefaultConfig returns the configuration used for omitted options.
func DefaultConfig() Config {
	return Config{Interval: DefaultInterval}
}

// Block counts pending updates.
type Block struct {
	id       string
	interval time.Duration
	output   *widget.Widget
	runner   command.Runner
	logger   *logrus.Entry
}

// New is the block.Constructor for pamac.
func New(id string, raw map[string]interface{}, env block.Env) (block.Block, error) {
	cfg := DefaultConfig()
	if raw == nil {
		raw = map[string]interface{}{}
	}
	if err := block.DecodeConfig(Kind, raw, &cfg); err != nil {
		return nil, err
	}
	return NewWithConfig(id, cfg, env)
}

// NewWithConfig builds the block from an already decoded configuration.
func NewWithConfig(id string, cfg Config, env block.Env) (*Block, error) {
	// Update returns the interval as is, and zero would stop polling.
	if cfg.Interval <= 0 {
		return nil, errors.ConfigValidation(Kind, fmt.Errorf("interval must be positive, got %v", cfg.Interval))
	}

	factory := env.Widgets
	if factory == nil {
		var err error
		if factory, err = widget.NewFactory(""); err != nil {
			return nil, err
		}
	}
	w, err := factory.Create(Kind)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create pamac widget")
	}

	runner := env.Runner
	if runner == nil {
		runner = command.NewShellRunner()
	}
	logger := env.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger()).WithField("block", Kind)
	}

	return &Block{
		id:       id,
		interval: cfg.Interval,
		output:   w.WithIcon(icon),
		runner:   runner,
		logger:   logger,
	}, nil
}

// ID returns the block's identity token.
func (b *Block) ID() string {
	return b.id
}

// Update runs the check and shows the number of pending updates. The
// configured interval is returned whatever the count.
func (b *Block) Update(ctx context.Context) (time.Duration, error) {
	out, err := b.runner.Output(ctx, command.Shell{
		Script: checkScript,
		Env:    map[string]string{"LC_ALL": "C"},
	})
	if err != nil {
		return b.interval, errors.ForBlock(err, Kind, b.id)
	}

	count := countRecords(out)
	if count == 0 {
		b.output.SetText("").SetState(widget.Idle)
	} else {
		b.output.SetText(strconv.Itoa(count)).SetState(widget.Info)
	}
	b.logger.WithField("updates", count).Debug("Checked for updates")
	return b.interval, nil
}

// View returns the block's single widget.
func (b *Block) View() []*widget.Widget {
	return []*widget.Widget{b.output}
}

// Click opens the package manager on a left click of the pamac widget.
// Launch failures are dropped.
func (b *Block) Click(ev input.Event) error {
	if !ev.IsPrimary(Kind) {
		return nil
	}
	_ = b.runner.Spawn(command.Shell{Script: managerScript})
	return nil
}

// countRecords counts newline-delimited records; an unterminated last line
// is a record.
func countRecords(out string) int {
	if out == "" {
		return 0
	}
	n := strings.Count(out, "\n")
	if !strings.HasSuffix(out, "\n") {
		n++
	}
	return n
}

var _ block.Block = (*Block)(nil)
