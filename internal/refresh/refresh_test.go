package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

func recv(t *testing.T, ch <-chan uint64) uint64 {
	t.Helper()
	select {
	case k, ok := <-ch:
		require.True(t, ok, "channel closed")
		return k
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refresh key")
		return 0
	}
}

func TestTriggerIncrementsKey(t *testing.T) {
	s := New()
	assert.Equal(t, uint64(0), s.Key())
	assert.Equal(t, uint64(1), s.Trigger())
	assert.Equal(t, uint64(2), s.Trigger())
	assert.Equal(t, uint64(2), s.Key())
}

func TestSubscribersSeeLatestKey(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New()
	ch := s.Subscribe(ctx)

	// Nobody is reading, so intermediate keys are replaced.
	s.Trigger()
	s.Trigger()
	s.Trigger()
	assert.Equal(t, uint64(3), recv(t, ch))

	s.Trigger()
	assert.Equal(t, uint64(4), recv(t, ch))
}

func TestSubscriptionClosesWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New()
	ch := s.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed")
	}
	// Triggering after the subscriber left must not block or panic.
	s.Trigger()
}

func TestFollowForwardsStoreEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New()
	ch := s.Subscribe(ctx)

	events := make(chan store.Event)
	done := make(chan struct{})
	go func() {
		s.Follow(ctx, events)
		close(done)
	}()

	events <- store.Event{Kind: store.KindTask}
	assert.Equal(t, uint64(1), recv(t, ch))
	close(events)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after events closed")
	}
}
