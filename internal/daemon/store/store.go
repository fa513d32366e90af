package store

import (
	"sync"

	"github.com/grovetools/statusbar/scheduler"
)

// subscriberBuffer is how many updates a slow subscriber may lag behind
// before updates to it are dropped.
const subscriberBuffer = 100

// Store is the in-memory state store for the daemon.
// It is thread-safe and supports pub/sub for real-time updates.
type Store struct {
	mu          sync.RWMutex
	views       []scheduler.BlockView
	subscribers map[chan Update]struct{}
}

// New creates a new Store instance.
func New() *Store {
	return &Store{
		subscribers: make(map[chan Update]struct{}),
	}
}

// Views returns a copy of the latest views in bar order.
func (s *Store) Views() []scheduler.BlockView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]scheduler.BlockView, len(s.views))
	copy(out, s.views)
	return out
}

// Find returns the view of the block with the given identity.
func (s *Store) Find(id string) (scheduler.BlockView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.views {
		if v.ID == id {
			return v, true
		}
	}
	return scheduler.BlockView{}, false
}

// Publish implements scheduler.Sink: it replaces the views and notifies
// subscribers.
func (s *Store) Publish(views []scheduler.BlockView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = views
	s.broadcastLocked(Update{Type: UpdateBlocks, Source: "scheduler", Views: views})
}

// Subscribe creates a new subscription channel for state updates.
func (s *Store) Subscribe() chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, subscriberBuffer)
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// BroadcastConfigReload tells subscribers that file was reloaded.
func (s *Store) BroadcastConfigReload(file string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.broadcastLocked(Update{Type: UpdateConfigReload, Source: "config", File: file})
}

// BroadcastConfigError tells subscribers that file changed but could not
// be loaded; the previous configuration stays active.
func (s *Store) BroadcastConfigError(file string, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.broadcastLocked(Update{Type: UpdateConfigError, Source: "config", File: file, Err: err.Error()})
}

func (s *Store) broadcastLocked(u Update) {
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
			// Non-blocking send to prevent slow clients from stalling the daemon
		}
	}
}

var _ scheduler.Sink = (*Store)(nil)
