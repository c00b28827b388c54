package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Memory keeps entities in process, in insertion order. Results are copies.
type Memory struct {
	mu    sync.Mutex
	items map[Kind][]Entity
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{items: make(map[Kind][]Entity)}
}

func (m *Memory) List(ctx context.Context, kind Kind) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := blankEntity(kind); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entity, 0, len(m.items[kind]))
	for _, e := range m.items[kind] {
		out = append(out, Clone(e))
	}
	return out, nil
}

func (m *Memory) Add(ctx context.Context, e Entity) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := prepareNew(e); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(e.Kind(), e.EntityID()) >= 0 {
		return "", fmt.Errorf("%w: %s %s already exists", ErrConflict, e.Kind(), e.EntityID())
	}
	m.items[e.Kind()] = append(m.items[e.Kind()], Clone(e))
	return e.EntityID(), nil
}

func (m *Memory) Update(ctx context.Context, kind Kind, id string, p Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(kind, id)
	if i < 0 {
		return notFound(kind, id)
	}
	// Merge into a copy so a rejected patch leaves the stored value intact.
	next := Clone(m.items[kind][i])
	if err := p.Apply(next); err != nil {
		return err
	}
	m.items[kind][i] = next
	return nil
}

func (m *Memory) Delete(ctx context.Context, kind Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(kind, id)
	if i < 0 {
		return notFound(kind, id)
	}
	list := m.items[kind]
	m.items[kind] = append(list[:i:i], list[i+1:]...)
	return nil
}

func (m *Memory) indexOf(kind Kind, id string) int {
	id = strings.TrimSpace(id)
	for i, e := range m.items[kind] {
		if strings.EqualFold(e.EntityID(), id) {
			return i
		}
	}
	return -1
}
