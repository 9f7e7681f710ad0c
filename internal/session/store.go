package session

import (
	"context"
	"sync"
)

// Store holds one Document per session id. Save replaces the whole value so
// readers never observe a partially written document.
type Store interface {
	Load(ctx context.Context, id string) (*Document, error)
	Save(ctx context.Context, id string, doc Document) error
	// MarkFiled records ticketKey on the stored document, but only if it is
	// still the document identified by documentID.
	MarkFiled(ctx context.Context, id, documentID, ticketKey string) error
	Delete(ctx context.Context, id string) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = doc
	return nil
}

func (m *MemoryStore) MarkFiled(_ context.Context, id, documentID, ticketKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	if doc.ID != documentID {
		return ErrStale
	}
	doc.TicketKey = ticketKey
	m.docs[id] = doc
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

// Ping always succeeds for the in-process store.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}
