package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		intent  Intent
		kind    store.Kind
		payload string
	}{
		{"create task Buy milk", IntentCreate, store.KindTask, "Buy milk"},
		{"  CREATE Project  Garden  ", IntentCreate, store.KindProject, "Garden"},
		{"create note", IntentCreate, store.KindNote, ""},
		{"create idea Build a robot", IntentCreate, store.KindIdea, "Build a robot"},
		{"list tasks", IntentList, store.KindTask, ""},
		{"List Ideas please", IntentList, store.KindIdea, "please"},
		{"update task milk to Buy oat milk", IntentUpdate, store.KindTask, "milk to Buy oat milk"},
		{"toggle task complete milk", IntentToggle, store.KindTask, "milk"},
		{"delete note xyz", IntentDelete, store.KindNote, "xyz"},
		// Prefixes match literally, so a plural verb argument leaks into the payload.
		{"create tasks x", IntentCreate, store.KindTask, "s x"},
		{"toggle project complete x", IntentHelp, "", ""},
		{"list task", IntentHelp, "", ""},
		{"banana", IntentHelp, "", ""},
		{"", IntentHelp, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := Parse(tc.in)
			assert.Equal(t, tc.intent, got.Intent)
			assert.Equal(t, tc.kind, got.Kind)
			assert.Equal(t, tc.payload, got.Payload)
		})
	}
}

func TestParseKeepsPayloadCase(t *testing.T) {
	got := Parse("create NOTE Call Mom at 5")
	require.Equal(t, IntentCreate, got.Intent)
	assert.Equal(t, "Call Mom at 5", got.Payload)
}

func TestParseNonASCIIPrefixDoesNotPanic(t *testing.T) {
	got := Parse("Kreate task x")
	assert.Equal(t, IntentHelp, got.Intent)
}

func TestSplitUpdate(t *testing.T) {
	cases := []struct {
		in          string
		search      string
		replacement string
		ok          bool
	}{
		{"milk to Buy oat milk", "milk", "Buy oat milk", true},
		{"milk  to  oat", "milk", "oat", true},
		{"milk", "", "", false},
		{"go to gym to run", "", "", false},
		{"milk TO oat", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			search, replacement, ok := SplitUpdate(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.search, search)
			assert.Equal(t, tc.replacement, replacement)
		})
	}
}
