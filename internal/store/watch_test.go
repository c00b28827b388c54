package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case evt, ok := <-events:
		require.True(t, ok, "events closed")
		return evt
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change event")
		return Event{}
	}
}

func TestWatchReportsCollectionChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws, err := Open(t.TempDir())
	require.NoError(t, err)
	events, err := ws.Watch(ctx, nil)
	require.NoError(t, err)

	_, err = ws.Add(ctx, &Note{Content: "edited elsewhere"})
	require.NoError(t, err)
	assert.Equal(t, KindNote, waitEvent(t, events).Kind)

	path := filepath.Join(ws.Root, "ideas", "MANUAL__typed-by-hand.md")
	require.NoError(t, os.WriteFile(path, []byte("---\nid: MANUAL\n---\n\nTyped by hand\n"), 0o644))
	assert.Equal(t, KindIdea, waitEvent(t, events).Kind)
}

func TestWatchClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ws, err := Open(t.TempDir())
	require.NoError(t, err)
	events, err := ws.Watch(ctx, nil)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events not closed after cancel")
	}
}
