package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// DefaultID is the fixed session used by the CLI.
const DefaultID = "default"

// Session is one interactive session: an id, the store holding its document
// and a busy flag that is set while an external call is outstanding.
type Session struct {
	ID      string
	store   Store
	manager *Manager
}

// Document returns the current document, or ErrNotFound.
func (s *Session) Document(ctx context.Context) (*Document, error) {
	return s.store.Load(ctx, s.ID)
}

// SetDocument replaces the current document.
func (s *Session) SetDocument(ctx context.Context, doc Document) error {
	return s.store.Save(ctx, s.ID, doc)
}

// MarkFiled records a ticket key against the document identified by documentID.
func (s *Session) MarkFiled(ctx context.Context, documentID, ticketKey string) error {
	return s.store.MarkFiled(ctx, s.ID, documentID, ticketKey)
}

// Clear forgets the current document.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.ID)
}

// TryAcquire marks the session busy. It returns false if it already is.
func (s *Session) TryAcquire() bool {
	return s.manager.acquire(s.ID)
}

// Release clears the busy flag. Only the caller holding it may release.
func (s *Session) Release() {
	s.manager.release(s.ID)
}

// Busy reports whether an operation is outstanding.
func (s *Session) Busy() bool {
	return s.manager.isBusy(s.ID)
}

// Manager hands out Session values backed by one Store. Busy flags are
// process-local and only tracked while held, so idle sessions cost nothing.
type Manager struct {
	store Store
	mu    sync.Mutex
	busy  map[string]struct{}
}

// NewManager creates a Manager over store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, busy: make(map[string]struct{})}
}

// Get returns the session for id.
func (m *Manager) Get(id string) *Session {
	return &Session{ID: id, store: m.store, manager: m}
}

// New returns a session with a freshly generated id.
func (m *Manager) New() *Session {
	return m.Get(uuid.New().String())
}

// Store exposes the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// BusyCount returns the number of sessions with an operation outstanding.
func (m *Manager) BusyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.busy)
}

func (m *Manager) acquire(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.busy[id]; held {
		return false
	}
	m.busy[id] = struct{}{}
	return true
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.busy, id)
}

func (m *Manager) isBusy(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, held := m.busy[id]
	return held
}
