package block

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/grovetools/statusbar/errors"
	"github.com/grovetools/statusbar/input"
	"github.com/grovetools/statusbar/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBlock struct {
	id       string
	interval time.Duration
}

func (s *stubBlock) ID() string { return s.id }
func (s *stubBlock) Update(ctx context.Context) (time.Duration, error) { return s.interval, nil }
func (s *stubBlock) View() []*widget.Widget { return nil }
func (s *stubBlock) Click(ev input.Event) error { return nil }

type stubConfig struct {
	Interval time.Duration `yaml:"interval"`
	Label    string        `yaml:"label"`
}

func newStub(id string, raw map[string]interface{}, env Env) (Block, error) {
	cfg := stubConfig{Interval: 10 * time.Second}
	if err := DecodeConfig("stub", raw, &cfg); err != nil {
		return nil, err
	}
	return &stubBlock{id: id, interval: cfg.Interval}, nil
}

func TestNewIDUnique(t *testing.T) {
	hex := regexp.MustCompile(`^[0-9a-f]{32}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.Regexp(t, hex, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("stub", newStub))
	require.Error(t, r.Register("stub", newStub))
	require.Error(t, r.Register("", newStub))
	assert.Equal(t, []string{"stub"}, r.Kinds())

	b, err := r.Build("stub", map[string]interface{}{"interval": 5}, Env{})
	require.NoError(t, err)
	assert.Len(t, b.ID(), 32)
	d, err := b.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	_, err = r.Build("battery", nil, Env{})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownBlock))
}

func TestBuildAllIsolatesFailures(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("stub", newStub))

	built, errs := r.BuildAll([]Config{
		{Kind: "stub"},
		{Kind: "stub", Options: map[string]interface{}{"bogus": true}},
		{Kind: "missing"},
		{Kind: "stub", Options: map[string]interface{}{"interval": "1m"}},
	}, Env{})

	require.Len(t, built, 2)
	require.Len(t, errs, 2)
	assert.NotEqual(t, built[0].Block.ID(), built[1].Block.ID())
	assert.True(t, errors.Is(errs[0], errors.ErrCodeConfigValidation))
	assert.True(t, errors.Is(errs[1], errors.ErrCodeUnknownBlock))
}

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]interface{}
		want    time.Duration
		wantErr bool
	}{
		{"defaults", map[string]interface{}{}, 10 * time.Second, false},
		{"int seconds", map[string]interface{}{"interval": 5}, 5 * time.Second, false},
		{"int64 seconds", map[string]interface{}{"interval": int64(600)}, 600 * time.Second, false},
		{"float seconds", map[string]interface{}{"interval": 1.5}, 1500 * time.Millisecond, false},
		{"duration string", map[string]interface{}{"interval": "2m"}, 2 * time.Minute, false},
		{"unknown key", map[string]interface{}{"interval": 5, "colour": "red"}, 0, true},
		{"negative", map[string]interface{}{"interval": -1}, 0, true},
		{"bad string", map[string]interface{}{"interval": "soon"}, 0, true},
		{"int64 overflow", map[string]interface{}{"interval": int64(10000000000)}, 0, true},
		{"float overflow", map[string]interface{}{"interval": float64(1e10)}, 0, true},
		{"uint64 overflow", map[string]interface{}{"interval": uint64(1 << 63)}, 0, true},
		{"nan", map[string]interface{}{"interval": math.NaN()}, 0, true},
		{"one year", map[string]interface{}{"interval": int64(31536000)}, 31536000 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := stubConfig{Interval: 10 * time.Second}
			err := DecodeConfig("stub", tt.raw, &cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Interval)
		})
	}
}

func TestDecodeConfigNamesUnknownKey(t *testing.T) {
	var cfg stubConfig
	err := DecodeConfig("stub", map[string]interface{}{"colour": "red"}, &cfg)
	require.Error(t, err)
	assert.Contains(t, fmt.Sprint(err), "colour")
}
