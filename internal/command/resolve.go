package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

// updateSeparator splits "update <type> <search> to <replacement>".
const updateSeparator = " to "

// Resolver finds candidates by case-insensitive substring of the primary text.
type Resolver struct {
	store store.Store
}

func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Lookup is the result of one resolution: the whole collection, as fetched,
// and the candidates in collection order.
type Lookup struct {
	Kind    store.Kind
	Term    string
	All     []store.Entity
	Matches []store.Entity
}

func (r *Resolver) Lookup(ctx context.Context, kind store.Kind, term string) (Lookup, error) {
	all, err := r.store.List(ctx, kind)
	if err != nil {
		return Lookup{}, fmt.Errorf("list %s: %w", kind.Plural(), err)
	}
	term = strings.TrimSpace(term)
	l := Lookup{Kind: kind, Term: term, All: all}
	for _, e := range all {
		if containsFold(e.PrimaryText(), term) {
			l.Matches = append(l.Matches, e)
		}
	}
	return l, nil
}

// First returns the earliest candidate in collection order.
func (l Lookup) First() (store.Entity, error) {
	if len(l.Matches) == 0 {
		return nil, store.ErrNotFound
	}
	return l.Matches[0], nil
}

// One returns the only candidate, or a *store.MatchConflictError listing them all.
func (l Lookup) One() (store.Entity, error) {
	switch len(l.Matches) {
	case 0:
		return nil, store.ErrNotFound
	case 1:
		return l.Matches[0], nil
	default:
		return nil, &store.MatchConflictError{Reason: "term", Matches: l.Matches}
	}
}

// SplitUpdate splits an update payload into its search term and replacement.
// ok is false unless the separator yields exactly two non-empty parts.
func SplitUpdate(payload string) (search, replacement string, ok bool) {
	parts := strings.Split(payload, updateSeparator)
	if len(parts) != 2 {
		return "", "", false
	}
	search = strings.TrimSpace(parts[0])
	replacement = strings.TrimSpace(parts[1])
	if search == "" || replacement == "" {
		return "", "", false
	}
	return search, replacement, true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
