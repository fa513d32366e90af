package config

import (
	"sort"
	"time"

	"github.com/grovetools/statusbar/logging"
	"github.com/grovetools/statusbar/pkg/paths"
	"github.com/grovetools/statusbar/util/pathutil"
)

//go:generate sh -c "cd .. && go run ./tools/schema-generator/"

// Config is the statusbar configuration file.
type Config struct {
	Theme         string         `yaml:"theme,omitempty" jsonschema:"description=Color theme used to render widget states"`
	Icons         string         `yaml:"icons,omitempty" jsonschema:"enum=awesome,enum=material,enum=none,description=Icon set used for widget icons"`
	Separator     string         `yaml:"separator,omitempty" jsonschema:"description=Text placed between blocks on a rendered line"`
	RetryInterval time.Duration  `yaml:"retry_interval,omitempty" jsonschema:"description=Delay before retrying a block whose update failed and never reported an interval"`
	Logging       logging.Config `yaml:"logging,omitempty"`
	Daemon        DaemonConfig   `yaml:"daemon,omitempty"`
	Blocks        []BlockConfig  `yaml:"block,omitempty" jsonschema:"description=Blocks in bar order"`

	// Path is the file the configuration was loaded from, if any.
	Path string `yaml:"-" json:"-"`
}

// DaemonConfig is the [daemon] table.
type DaemonConfig struct {
	Socket     string `yaml:"socket,omitempty" jsonschema:"description=Unix socket path; empty uses the runtime directory"`
	Watch      bool   `yaml:"watch,omitempty" jsonschema:"description=Reload when the config file changes"`
	DebounceMs int    `yaml:"debounce_ms,omitempty" jsonschema:"minimum=0,description=Quiet period before a changed config is reloaded"`
}

// SocketPath returns the configured socket or the default one.
func (d DaemonConfig) SocketPath() string {
	if d.Socket == "" {
		return paths.SocketPath()
	}
	return pathutil.Expand(d.Socket)
}

// Debounce returns DebounceMs as a duration.
func (d DaemonConfig) Debounce() time.Duration {
	return time.Duration(d.DebounceMs) * time.Millisecond
}

// BlockConfig is one [[block]] record. The "block" key names the kind;
// every other key belongs to that kind.
type BlockConfig map[string]interface{}

// KindKey is the key that selects a block's kind.
const KindKey = "block"

// Kind returns the block kind, or "" when it is missing or not a string.
func (b BlockConfig) Kind() string {
	kind, _ := b[KindKey].(string)
	return kind
}

// Options returns the record without its kind key.
func (b BlockConfig) Options() map[string]interface{} {
	opts := make(map[string]interface{}, len(b))
	for k, v := range b {
		if k != KindKey {
			opts[k] = v
		}
	}
	return opts
}

// Keys returns the option names in sorted order.
func (b BlockConfig) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		if k != KindKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Default values applied before the file is decoded.
const (
	DefaultIcons      = "awesome"
	DefaultDebounceMs = 250
)

// Default returns the configuration used for every key the file omits.
func Default() *Config {
	return &Config{
		Icons: DefaultIcons,
		Logging: logging.Config{
			File: logging.FileSinkConfig{Enabled: true},
		},
		Daemon: DaemonConfig{
			Watch:      true,
			DebounceMs: DefaultDebounceMs,
		},
	}
}

// Fallback is the configuration used when no file exists: the defaults
// with a single pamac block.
func Fallback() *Config {
	cfg := Default()
	cfg.Blocks = []BlockConfig{{KindKey: "pamac"}}
	return cfg
}
