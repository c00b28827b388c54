package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ASSISTANT_CONFIG_PATH", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(New(""))
	require.NoError(t, err)
	assert.Equal(t, StoreFS, cfg.Store)
	assert.Equal(t, "agent", cfg.Chat.Mode)
	assert.Equal(t, 30*time.Second, cfg.Chat.Timeout)
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".assistant"), cfg.Root)
	assert.Empty(t, cfg.File)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".assistant.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: /srv/assistant\nstore: memory\nchat:\n  mode: chat\n  endpoint: http://localhost:3000/api/chat\n  timeout: 5s\n"), 0o644))
	t.Setenv("ASSISTANT_CONFIG_PATH", dir)
	t.Setenv("ASSISTANT_CHAT_ENDPOINT", "http://example.test/chat")

	cfg, err := Load(New(""))
	require.NoError(t, err)
	assert.Equal(t, "/srv/assistant", cfg.Root)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "chat", cfg.Chat.Mode)
	assert.Equal(t, "http://example.test/chat", cfg.Chat.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Chat.Timeout)
	assert.Equal(t, path, cfg.File)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: redis\n"), 0o644))

	_, err := Load(New(path))
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(New(filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}
