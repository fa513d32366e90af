package widget

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryCreate(t *testing.T) {
	f, err := NewFactory("")
	require.NoError(t, err)
	assert.Equal(t, IconsAwesome, f.IconSet())

	w, err := f.Create("pamac")
	require.NoError(t, err)
	assert.Equal(t, "pamac", w.Name())
	assert.Equal(t, "", w.Text())
	assert.Equal(t, Idle, w.State())

	_, err = f.Create(" ")
	assert.Error(t, err)
}

func TestUnknownIconSet(t *testing.T) {
	_, err := NewFactory("emoji")
	assert.Error(t, err)
}

func TestSnapshotResolvesIcon(t *testing.T) {
	f, err := NewFactory(IconsNone)
	require.NoError(t, err)
	w, err := f.Create("pamac")
	require.NoError(t, err)

	w.WithIcon("update").SetText("3").SetState(Info)
	snap := w.Snapshot()
	assert.Equal(t, Snapshot{Name: "pamac", Icon: "UPD", Text: "3", State: Info}, snap)
	assert.Equal(t, "UPD 3", snap.Label())

	// Snapshots do not follow later mutation.
	w.SetText("").SetState(Idle)
	assert.Equal(t, "3", snap.Text)
	assert.Equal(t, "UPD", w.Snapshot().Label())
}

func TestUnknownIconResolvesEmpty(t *testing.T) {
	f, err := NewFactory(IconsNone)
	require.NoError(t, err)
	w, err := f.Create("x")
	require.NoError(t, err)
	w.WithIcon("does-not-exist").SetText("hi")
	assert.Equal(t, "hi", w.Snapshot().Label())
}

func TestStateText(t *testing.T) {
	for _, s := range []State{Idle, Info, Good, Warning, Critical} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var back State
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}

	_, err := State(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "state(42)", State(42).String())

	_, err = ParseState("urgent")
	assert.Error(t, err)
}

func TestSnapshotJSON(t *testing.T) {
	data, err := json.Marshal(Snapshot{Name: "pamac", Text: "", State: Idle})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"pamac","text":"","state":"idle"}`, string(data))
}
