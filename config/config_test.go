package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlConfig = `
theme = "gruvbox"
icons = "none"
separator = " "
retry_interval = "30s"

[logging]
level = "debug"

[daemon]
debounce_ms = 50

[[block]]
block = "pamac"
interval = 600

[[block]]
block = "pamac"
interval = "1h"
`

const yamlConfig = `
icons: material
block:
  - block: pamac
    interval: 120
`

func TestParseTOML(t *testing.T) {
	cfg, err := Parse([]byte(tomlConfig), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "gruvbox", cfg.Theme)
	assert.Equal(t, "none", cfg.Icons)
	assert.Equal(t, " ", cfg.Separator)
	assert.Equal(t, 30*time.Second, cfg.RetryInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.File.Enabled, "defaults survive a partial table")
	assert.Equal(t, 50, cfg.Daemon.DebounceMs)
	assert.True(t, cfg.Daemon.Watch)

	require.Len(t, cfg.Blocks, 2)
	assert.Equal(t, "pamac", cfg.Blocks[0].Kind())
	assert.Equal(t, map[string]interface{}{"interval": int64(600)}, cfg.Blocks[0].Options())
	assert.Equal(t, []string{"interval"}, cfg.Blocks[1].Keys())
}

func TestParseYAML(t *testing.T) {
	cfg, err := Parse([]byte(yamlConfig), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "material", cfg.Icons)
	require.Len(t, cfg.Blocks, 1)
	assert.Equal(t, "pamac", cfg.Blocks[0].Kind())
	assert.Equal(t, 120, cfg.Blocks[0].Options()["interval"])
}

func TestParseEmpty(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML} {
		cfg, err := Parse(nil, format)
		require.NoError(t, err, format)
		assert.Equal(t, Default(), cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
		code   errors.ErrorCode
		want   string
	}{
		{"syntax", FormatTOML, "theme = ", errors.ErrCodeConfigInvalid, "failed to parse"},
		{"unknown key", FormatTOML, "colour = \"red\"\n", errors.ErrCodeConfigInvalid, "colour"},
		{"block without kind", FormatTOML, "[[block]]\ninterval = 5\n", errors.ErrCodeConfigInvalid, "/block/0"},
		{"bad icon set", FormatYAML, "icons: emoji\n", errors.ErrCodeConfigInvalid, "/icons"},
		{"bad theme", FormatYAML, "theme: solarized\n", errors.ErrCodeConfigInvalid, "unknown theme"},
		{"negative debounce", FormatTOML, "[daemon]\ndebounce_ms = -1\n", errors.ErrCodeConfigInvalid, "debounce_ms"},
		{"bad retry interval", FormatTOML, "retry_interval = \"soon\"\n", errors.ErrCodeConfigInvalid, "retry_interval"},
		{"retry interval overflow", FormatTOML, "retry_interval = 10000000000\n", errors.ErrCodeConfigInvalid, "retry_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SB_SEP", " :: ")
	t.Setenv("SB_EMPTY", "")

	assert.Equal(t, `separator = " :: "`, expandEnvVars(`separator = "${SB_SEP}"`))
	assert.Equal(t, `icons = "none"`, expandEnvVars(`icons = "${SB_EMPTY:-none}"`))
	assert.Equal(t, `x = ""`, expandEnvVars(`x = "${SB_UNSET_FOR_TEST}"`))

	cfg, err := Parse([]byte("separator = \"${SB_SEP}\"\n"), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, " :: ", cfg.Separator)
}

func TestFindConfigFile(t *testing.T) {
	home := testutil.SetHome(t)

	_, err := FindConfigFile("")
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))

	yml := testutil.WriteConfig(t, filepath.Join(home, "config"), "config.yml", yamlConfig)
	path, err := FindConfigFile("")
	require.NoError(t, err)
	assert.Equal(t, yml, path)

	toml := testutil.WriteConfig(t, filepath.Join(home, "config"), "config.toml", tomlConfig)
	path, err = FindConfigFile("")
	require.NoError(t, err)
	assert.Equal(t, toml, path, "config.toml wins over config.yml")

	other := testutil.WriteConfig(t, t.TempDir(), "bar.yaml", yamlConfig)
	t.Setenv(EnvConfig, other)
	path, err = FindConfigFile("")
	require.NoError(t, err)
	assert.Equal(t, other, path)

	path, err = FindConfigFile(toml)
	require.NoError(t, err)
	assert.Equal(t, toml, path, "an explicit path wins over the environment")

	_, err = FindConfigFile(filepath.Join(home, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestLoad(t *testing.T) {
	testutil.SetHome(t)
	path := testutil.WriteConfig(t, t.TempDir(), "bar.yaml", yamlConfig)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "material", cfg.Icons)

	bad := testutil.WriteConfig(t, t.TempDir(), "bad.toml", "icons = 3\n")
	_, err = Load(bad)
	require.Error(t, err)
	statusErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, bad, statusErr.Details["path"])
}

func TestLoadOrFallback(t *testing.T) {
	testutil.SetHome(t)

	cfg, err := LoadOrFallback("")
	require.NoError(t, err)
	require.Len(t, cfg.Blocks, 1)
	assert.Equal(t, "pamac", cfg.Blocks[0].Kind())
	assert.Empty(t, cfg.Path)

	_, err = LoadOrFallback("/nonexistent/statusbar.toml")
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound), "explicit paths must exist")
}

func TestDaemonConfig(t *testing.T) {
	home := testutil.SetHome(t)

	d := DaemonConfig{DebounceMs: 250}
	assert.Equal(t, filepath.Join(home, "run", "statusbard.sock"), d.SocketPath())
	assert.Equal(t, 250*time.Millisecond, d.Debounce())

	d.Socket = "/tmp/bar.sock"
	assert.Equal(t, "/tmp/bar.sock", d.SocketPath())
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("a/config.yml"))
	assert.Equal(t, FormatYAML, FormatFor("CONFIG.YAML"))
	assert.Equal(t, FormatTOML, FormatFor("config.toml"))
	assert.Equal(t, FormatTOML, FormatFor("config"))
}
