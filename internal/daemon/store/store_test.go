package store

import (
	"fmt"
	"testing"

	"github.com/grovetools/statusbar/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAndSubscribe(t *testing.T) {
	s := New()
	assert.Empty(t, s.Views())

	ch := s.Subscribe()
	views := []scheduler.BlockView{{ID: "a", Kind: "pamac"}, {ID: "b", Kind: "pamac"}}
	s.Publish(views)

	u := <-ch
	assert.Equal(t, UpdateBlocks, u.Type)
	assert.Equal(t, views, u.Views)
	assert.Equal(t, views, s.Views())

	v, ok := s.Find("b")
	require.True(t, ok)
	assert.Equal(t, "b", v.ID)
	_, ok = s.Find("c")
	assert.False(t, ok)

	s.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
	s.Unsubscribe(ch)
}

func TestConfigBroadcasts(t *testing.T) {
	s := New()
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	s.BroadcastConfigReload("/etc/statusbar.toml")
	s.BroadcastConfigError("/etc/statusbar.toml", fmt.Errorf("bad"))

	u := <-ch
	assert.Equal(t, UpdateConfigReload, u.Type)
	assert.Equal(t, "/etc/statusbar.toml", u.File)
	u = <-ch
	assert.Equal(t, UpdateConfigError, u.Type)
	assert.Equal(t, "bad", u.Err)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	s := New()
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	for i := 0; i < subscriberBuffer*2; i++ {
		s.Publish([]scheduler.BlockView{{ID: fmt.Sprint(i)}})
	}
	assert.Len(t, ch, subscriberBuffer)
	assert.Equal(t, fmt.Sprint(subscriberBuffer*2-1), s.Views()[0].ID)
}
