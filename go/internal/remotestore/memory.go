package remotestore

import (
	"context"
	"sync"

	"github.com/mcdev12/reckoning/go/internal/models"
)

// MemoryStore is an in-process DocumentStore
type MemoryStore struct {
	mu       sync.Mutex
	docs     map[models.Identity]models.ProgressState
	watchers map[int]func(Change)
	nextID   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[models.Identity]models.ProgressState),
		watchers: make(map[int]func(Change)),
	}
}

func (m *MemoryStore) Get(_ context.Context, id models.Identity) (models.ProgressState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return models.ProgressState{}, ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id models.Identity, patch models.ProgressPatch) error {
	m.mu.Lock()
	doc, ok := m.docs[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	m.docs[id] = patch.Apply(doc)
	m.mu.Unlock()

	m.emit(Change{Identity: id, Op: "UPDATE"})
	return nil
}

func (m *MemoryStore) Set(_ context.Context, id models.Identity, state models.ProgressState) error {
	m.mu.Lock()
	doc := state.Clone()
	doc.Identity = id
	prev, existed := m.docs[id]
	if doc.UserName == "" {
		doc.UserName = prev.UserName
	}
	m.docs[id] = doc
	m.mu.Unlock()

	op := "INSERT"
	if existed {
		op = "UPDATE"
	}
	m.emit(Change{Identity: id, Op: op})
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id models.Identity) error {
	m.mu.Lock()
	_, existed := m.docs[id]
	delete(m.docs, id)
	m.mu.Unlock()

	if existed {
		m.emit(Change{Identity: id, Op: "DELETE"})
	}
	return nil
}

// Watch registers handle until ctx is done
func (m *MemoryStore) Watch(ctx context.Context, match func(Change) bool, handle func(Change)) error {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = func(c Change) {
		if match == nil || match(c) {
			handle(c)
		}
	}
	m.mu.Unlock()

	<-ctx.Done()

	m.mu.Lock()
	delete(m.watchers, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) emit(c Change) {
	m.mu.Lock()
	handlers := make([]func(Change), 0, len(m.watchers))
	for _, h := range m.watchers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(c)
	}
}
