// Package refresh carries the "data changed, re-fetch" signal from the
// interpreter and the store watcher to whatever views are listening.
package refresh

import (
	"context"
	"sync"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

// Signal is a refresh key that increments on every Trigger. Subscribers
// receive the latest key; intermediate keys may be skipped.
type Signal struct {
	mu   sync.Mutex
	key  uint64
	next int
	subs map[int]chan uint64
}

func New() *Signal {
	return &Signal{subs: make(map[int]chan uint64)}
}

// Trigger bumps the key and notifies subscribers without blocking.
func (s *Signal) Trigger() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key++
	for _, ch := range s.subs {
		// Keep only the newest key in each buffer.
		select {
		case <-ch:
		default:
		}
		ch <- s.key
	}
	return s.key
}

func (s *Signal) Key() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Subscribe returns a channel of refresh keys that is closed when ctx ends.
func (s *Signal) Subscribe(ctx context.Context) <-chan uint64 {
	ch := make(chan uint64, 1)
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}

// Follow triggers s for every store change event until events closes or ctx ends.
func (s *Signal) Follow(ctx context.Context, events <-chan store.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			s.Trigger()
		}
	}
}
