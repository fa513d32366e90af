package bar

import (
	"context"
	"io"
	"testing"

	"github.com/grovetools/statusbar/command/mocks"
	"github.com/grovetools/statusbar/config"
	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/widget"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestBuildSkipsBadBlocks(t *testing.T) {
	cfg := config.Default()
	cfg.Icons = widget.IconsNone
	cfg.Blocks = []config.BlockConfig{
		{"block": "pamac"},
		{"block": "weather"},
		{"block": "pamac", "colour": "red"},
		{"block": "pamac", "interval": 60},
	}

	runner := mocks.NewRunner("a\nb\n")
	s, errs := Build(cfg, Options{Runner: runner, Logger: quietLogger()})
	require.NotNil(t, s)
	require.Len(t, errs, 2)
	assert.True(t, errors.Is(errs[0], errors.ErrCodeUnknownBlock))
	assert.True(t, errors.Is(errs[1], errors.ErrCodeConfigValidation))
	assert.Equal(t, 2, s.Len())

	views, updateErrs := s.Once(context.Background())
	require.Empty(t, updateErrs)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.Equal(t, "pamac", v.Kind)
		assert.Equal(t, "2", v.Widgets[0].Text)
	}

	line := Renderer(cfg, termenv.Ascii).Line(views)
	assert.Equal(t, "UPD 2 | UPD 2", line)
}

func TestRendererHonorsSeparator(t *testing.T) {
	cfg := config.Default()
	cfg.Icons = widget.IconsNone
	cfg.Separator = " :: "
	cfg.Blocks = []config.BlockConfig{{"block": "pamac"}, {"block": "pamac"}}

	s, errs := Build(cfg, Options{Runner: mocks.NewRunner("x\n"), Logger: quietLogger()})
	require.Empty(t, errs)
	views, _ := s.Once(context.Background())
	assert.Equal(t, "UPD 1 :: UPD 1", Renderer(cfg, termenv.Ascii).Line(views))
}

func TestBuildRejectsUnknownIconSet(t *testing.T) {
	cfg := config.Default()
	cfg.Icons = "emoji"
	s, errs := Build(cfg, Options{Logger: quietLogger()})
	assert.Nil(t, s)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], errors.ErrCodeConfigInvalid))
}
