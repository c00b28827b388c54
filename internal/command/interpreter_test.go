package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

type harness struct {
	store     *store.Memory
	in        *Interpreter
	refreshes int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{store: store.NewMemory()}
	h.in = New(h.store, WithRefresh(func() { h.refreshes++ }))
	return h
}

func (h *harness) seed(t *testing.T, kind store.Kind, texts ...string) {
	t.Helper()
	for _, text := range texts {
		e, err := store.NewEntity(kind, text)
		require.NoError(t, err)
		_, err = h.store.Add(context.Background(), e)
		require.NoError(t, err)
	}
}

func (h *harness) run(t *testing.T, raw string) string {
	t.Helper()
	out, err := h.in.Interpret(context.Background(), raw)
	require.NoError(t, err)
	return out
}

func (h *harness) texts(t *testing.T, kind store.Kind) []string {
	t.Helper()
	items, err := h.store.List(context.Background(), kind)
	require.NoError(t, err)
	out := make([]string, 0, len(items))
	for _, e := range items {
		out = append(out, e.PrimaryText())
	}
	return out
}

func TestCreateEveryKind(t *testing.T) {
	for _, kind := range store.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			h := newHarness(t)
			out := h.run(t, "create "+string(kind)+"   Plan the trip  ")
			assert.Equal(t, kind.Title()+` "Plan the trip" created successfully.`, out)

			items, err := h.store.List(context.Background(), kind)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "Plan the trip", items[0].PrimaryText())
			assert.NotEmpty(t, items[0].EntityID())
			assert.NotEmpty(t, items[0].Created())
		})
	}
}

func TestCreateEmptyPayloadPrompts(t *testing.T) {
	cases := map[string]string{
		"create task ":   "Please provide content for the task.",
		"create project": "Please provide a name for the project.",
		"create note":    "Please provide content for the note.",
		"create idea  ":  "Please provide content for the idea.",
	}
	for in, want := range cases {
		h := newHarness(t)
		assert.Equal(t, want, h.run(t, in))
		for _, kind := range store.Kinds {
			assert.Empty(t, h.texts(t, kind))
		}
	}
}

func TestListFormatting(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "You have no tasks.", h.run(t, "list tasks"))

	h.seed(t, store.KindTask, "Buy milk", "Walk dog")
	h.run(t, "toggle task complete walk")
	assert.Equal(t, "Your tasks:\n- Buy milk [Pending]\n- Walk dog [Completed]", h.run(t, "list tasks"))

	h.seed(t, store.KindProject, "Garden")
	assert.Equal(t, "Your projects:\n- Garden - No description", h.run(t, "list projects"))

	h.seed(t, store.KindIdea, "Build a robot")
	assert.Equal(t, "Your ideas:\n- Build a robot", h.run(t, "list ideas"))
}

func TestListIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.seed(t, store.KindTask, "Buy milk", "Call mom")
	first := h.run(t, "list tasks")
	assert.Equal(t, first, h.run(t, "list tasks"))
}

func TestUpdateSingleMatch(t *testing.T) {
	h := newHarness(t)
	h.seed(t, store.KindTask, "Buy milk")
	out := h.run(t, "update task milk to Buy oat milk")
	assert.Equal(t, `Task "Buy milk" updated to "Buy oat milk".`, out)
	assert.Equal(t, []string{"Buy oat milk"}, h.texts(t, store.KindTask))
}

func TestUpdateAmbiguousWritesNothing(t *testing.T) {
	h := newHarness(t)
	h.seed(t, store.KindIdea, "Build a robot", "Build a website")
	out := h.run(t, "update idea Build to something")
	assert.Contains(t, out, `I found 2 ideas containing "Build":`)
	assert.Contains(t, out, `- "Build a robot"`)
	assert.Contains(t, out, `- "Build a website"`)
	assert.Equal(t, []string{"Build a robot", "Build a website"}, h.texts(t, store.KindIdea))
}

func TestUpdateNotFoundOffersSuggestions(t *testing.T) {
	h := newHarness(t)
	h.seed(t, store.KindNote, "Call")
	out := h.run(t, "update note Call mom to Call dad")
	assert.True(t, strings.HasPrefix(out, `Note containing "Call mom" not found.`), out)
	assert.Contains(t, out, "Possible spelling corrections:\nDid you mean \"Call\"?")
	assert.Equal(t, []string{"Call"}, h.texts(t, store.KindNote))
}

func TestUpdateWithoutSeparatorClarifies(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.run(t, "update task"), `"update task [task name] to [new content]"`)
	assert.Contains(t, h.run(t, "update project"), `"update project [partial name] to [new name]"`)

	h.seed(t, store.KindTask, "Buy milk")
	out := h.run(t, "update task milk")
	assert.Contains(t, out, `I found one task matching "milk": "Buy milk".`)
	assert.Contains(t, out, `"update task Buy milk to [new title]"`)
	assert.Contains(t, out, `Did you mean "Buy milk"?`)

	out = h.run(t, "update task bread")
	assert.Equal(t, `No tasks found containing "bread". Please check the spelling or try a different search term.`, out)
	assert.Equal(t, []string{"Buy milk"}, h.texts(t, store.KindTask))
}

func TestToggle(t *testing.T) {
	h := newHarness(t)
	h.seed(t, store.KindTask, "Buy milk")
	assert.Equal(t, `Task "Buy milk" marked as completed.`, h.run(t, "toggle task complete milk"))
	items, err := h.store.List(context.Background(), store.KindTask)
	require.NoError(t, err)
	assert.True(t, items[0].(*store.Task).Completed)
	assert.Equal(t, `Task "Buy milk" marked as pending.`, h.run(t, "toggle task complete MILK"))

	assert.Equal(t, `Task containing "bread" not found.`, h.run(t, "toggle task complete bread"))
	assert.Contains(t, h.run(t, "toggle task complete"), "Please specify which task to toggle.")
}

func TestDeleteFirstMatch(t *testing.T) {
	h := newHarness(t)
	h.seed(t, store.KindNote, "alpha one", "alpha two")
	assert.Equal(t, `Note "alpha one" deleted successfully.`, h.run(t, "delete note alpha"))
	assert.Equal(t, []string{"alpha two"}, h.texts(t, store.KindNote))

	assert.Contains(t, h.run(t, "delete note"), "Please specify which note to delete.")
	assert.Equal(t, []string{"alpha two"}, h.texts(t, store.KindNote))
}

func TestDeleteNotFound(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "delete note xyz")
	assert.Equal(t, `Note containing "xyz" not found.`, out)
	assert.Empty(t, h.texts(t, store.KindNote))
}

func TestUnrecognizedReturnsHelp(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "banana")
	assert.Equal(t, HelpText, out)
	for _, kind := range store.Kinds {
		assert.Contains(t, out, "list "+kind.Plural())
		assert.Empty(t, h.texts(t, kind))
	}
}

func TestRefreshFiresAfterEveryCommand(t *testing.T) {
	h := newHarness(t)
	h.run(t, "banana")
	h.run(t, "create task ")
	h.run(t, "create task x")
	h.run(t, "delete task nothing")
	assert.Equal(t, 4, h.refreshes)
}

type failingStore struct {
	store.Store
	err error
}

func (f failingStore) List(context.Context, store.Kind) ([]store.Entity, error) { return nil, f.err }
func (f failingStore) Add(context.Context, store.Entity) (string, error)      { return "", f.err }

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("backend down")
	refreshed := 0
	in := New(failingStore{Store: store.NewMemory(), err: boom}, WithRefresh(func() { refreshed++ }))

	for _, raw := range []string{"create task x", "list tasks", "update task a to b", "toggle task complete a", "delete idea a"} {
		out, err := in.Interpret(context.Background(), raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, boom), raw)
		assert.Empty(t, out)
	}
	assert.Equal(t, 5, refreshed)
}

func TestLookupOne(t *testing.T) {
	h := newHarness(t)
	h.seed(t, store.KindIdea, "Build a robot", "Build a website")
	l, err := h.in.resolver.Lookup(context.Background(), store.KindIdea, "build")
	require.NoError(t, err)

	_, err = l.One()
	var conflict *store.MatchConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Len(t, conflict.Matches, 2)

	first, err := l.First()
	require.NoError(t, err)
	assert.Equal(t, "Build a robot", first.PrimaryText())
}

func TestSuggestionsAreCapped(t *testing.T) {
	l := Lookup{Kind: store.KindTask, Term: "a"}
	for _, text := range []string{"ab", "ac", "ad", "ae", "a"} {
		e, err := store.NewEntity(store.KindTask, text)
		require.NoError(t, err)
		l.All = append(l.All, e)
	}
	got := suggestions(l)
	assert.Equal(t, []string{`Did you mean "ab"?`, `Did you mean "ac"?`, `Did you mean "ad"?`}, got)
	assert.Equal(t, "", withSuggestions("", l))
}
