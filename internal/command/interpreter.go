// Package command turns free-text chat input into store operations and a
// human-readable reply.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

// Interpreter executes chat commands against a store. It is safe for one
// caller at a time; the chat session serializes submissions.
type Interpreter struct {
	store    store.Store
	resolver *Resolver
	refresh  func()
	logger   *slog.Logger
}

type Option func(*Interpreter)

// WithRefresh installs the hook fired after every command.
func WithRefresh(fn func()) Option {
	return func(in *Interpreter) {
		if fn != nil {
			in.refresh = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) {
		if l != nil {
			in.logger = l
		}
	}
}

func New(st store.Store, opts ...Option) *Interpreter {
	in := &Interpreter{
		store:    st,
		resolver: NewResolver(st),
		refresh:  func() {},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Interpret runs one command and returns the reply to show the user. Store
// failures are returned as errors. The refresh hook fires either way.
func (in *Interpreter) Interpret(ctx context.Context, raw string) (string, error) {
	defer in.refresh()

	cmd := Parse(raw)
	in.logger.Debug("command: interpret", "intent", cmd.Intent, "kind", cmd.Kind)

	var (
		reply string
		err   error
	)
	switch cmd.Intent {
	case IntentCreate:
		reply, err = in.create(ctx, cmd)
	case IntentList:
		reply, err = in.list(ctx, cmd)
	case IntentUpdate:
		reply, err = in.update(ctx, cmd)
	case IntentToggle:
		reply, err = in.toggle(ctx, cmd)
	case IntentDelete:
		reply, err = in.delete(ctx, cmd)
	default:
		reply = HelpText
	}
	if err != nil {
		in.logger.Error("command: failed", "intent", cmd.Intent, "kind", cmd.Kind, "error", err)
		return "", err
	}
	return reply, nil
}

func (in *Interpreter) create(ctx context.Context, cmd Command) (string, error) {
	if cmd.Payload == "" {
		return createPrompt(cmd.Kind), nil
	}
	e, err := store.NewEntity(cmd.Kind, cmd.Payload)
	if err != nil {
		return "", err
	}
	if _, err := in.store.Add(ctx, e); err != nil {
		return "", fmt.Errorf("create %s: %w", cmd.Kind, err)
	}
	return fmt.Sprintf("%s \"%s\" created successfully.", cmd.Kind.Title(), cmd.Payload), nil
}

func createPrompt(kind store.Kind) string {
	if kind == store.KindProject {
		return "Please provide a name for the project."
	}
	return fmt.Sprintf("Please provide content for the %s.", kind)
}

func (in *Interpreter) list(ctx context.Context, cmd Command) (string, error) {
	items, err := in.store.List(ctx, cmd.Kind)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", cmd.Kind.Plural(), err)
	}
	if len(items) == 0 {
		return fmt.Sprintf("You have no %s.", cmd.Kind.Plural()), nil
	}
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, fmt.Sprintf("Your %s:", cmd.Kind.Plural()))
	for _, e := range items {
		lines = append(lines, listLine(e))
	}
	return strings.Join(lines, "\n"), nil
}

func listLine(e store.Entity) string {
	switch v := e.(type) {
	case *store.Task:
		return fmt.Sprintf("- %s [%s]", v.Title, v.StatusLabel())
	case *store.Project:
		desc := v.Description
		if strings.TrimSpace(desc) == "" {
			desc = "No description"
		}
		return fmt.Sprintf("- %s - %s", v.Name, desc)
	default:
		return "- " + e.PrimaryText()
	}
}

func (in *Interpreter) update(ctx context.Context, cmd Command) (string, error) {
	if cmd.Payload == "" {
		return updateUsage(cmd.Kind), nil
	}
	search, replacement, ok := SplitUpdate(cmd.Payload)
	if !ok {
		l, err := in.resolver.Lookup(ctx, cmd.Kind, cmd.Payload)
		if err != nil {
			return "", err
		}
		return withSuggestions(clarify(l), l), nil
	}

	l, err := in.resolver.Lookup(ctx, cmd.Kind, search)
	if err != nil {
		return "", err
	}
	target, err := l.One()
	var conflict *store.MatchConflictError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return withSuggestions(notFoundMessage(cmd.Kind, search), l), nil
	case errors.As(err, &conflict):
		return withSuggestions(clarify(l), l), nil
	case err != nil:
		return "", err
	}

	old := target.PrimaryText()
	if err := in.store.Update(ctx, cmd.Kind, target.EntityID(), store.TextPatch(replacement)); err != nil {
		return "", fmt.Errorf("update %s: %w", cmd.Kind, err)
	}
	return fmt.Sprintf("%s \"%s\" updated to \"%s\".", cmd.Kind.Title(), old, replacement), nil
}

func updateUsage(kind store.Kind) string {
	name, partial, replacement := "["+string(kind)+" content]", "[partial content]", "[new content]"
	switch kind {
	case store.KindTask:
		name, partial = "[task name]", "[partial name]"
	case store.KindProject:
		name, partial, replacement = "[project name]", "[partial name]", "[new name]"
	}
	return fmt.Sprintf("Please specify which %s you want to update. For example:\n"+
		"- \"update %s %s to %s\"\n"+
		"- \"update %s %s to %s\"",
		kind, kind, name, replacement, kind, partial, replacement)
}

func (in *Interpreter) toggle(ctx context.Context, cmd Command) (string, error) {
	if cmd.Payload == "" {
		return fmt.Sprintf("Please specify which %s to toggle. For example:\n- \"toggle %s complete [%s name]\"",
			cmd.Kind, cmd.Kind, cmd.Kind), nil
	}
	l, err := in.resolver.Lookup(ctx, cmd.Kind, cmd.Payload)
	if err != nil {
		return "", err
	}
	target, err := l.First()
	if err != nil {
		return withSuggestions(notFoundMessage(cmd.Kind, cmd.Payload), l), nil
	}
	task, ok := target.(*store.Task)
	if !ok {
		return "", fmt.Errorf("toggle %s: %w", cmd.Kind, store.ErrInvalid)
	}
	done := !task.Completed
	if err := in.store.Update(ctx, cmd.Kind, task.ID, store.CompletedPatch(done)); err != nil {
		return "", fmt.Errorf("toggle %s: %w", cmd.Kind, err)
	}
	state := "pending"
	if done {
		state = "completed"
	}
	return fmt.Sprintf("%s \"%s\" marked as %s.", cmd.Kind.Title(), task.Title, state), nil
}

func (in *Interpreter) delete(ctx context.Context, cmd Command) (string, error) {
	if cmd.Payload == "" {
		return fmt.Sprintf("Please specify which %s to delete. For example:\n- \"delete %s [%s %s]\"",
			cmd.Kind, cmd.Kind, cmd.Kind, cmd.Kind.PrimaryField()), nil
	}
	l, err := in.resolver.Lookup(ctx, cmd.Kind, cmd.Payload)
	if err != nil {
		return "", err
	}
	target, err := l.First()
	if err != nil {
		return withSuggestions(notFoundMessage(cmd.Kind, cmd.Payload), l), nil
	}
	if err := in.store.Delete(ctx, cmd.Kind, target.EntityID()); err != nil {
		return "", fmt.Errorf("delete %s: %w", cmd.Kind, err)
	}
	return fmt.Sprintf("%s \"%s\" deleted successfully.", cmd.Kind.Title(), target.PrimaryText()), nil
}
