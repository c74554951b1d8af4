package suppliers

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Store persists suppliers.
type Store interface {
	List(ctx context.Context) ([]Supplier, error)
	Get(ctx context.Context, id string) (Supplier, error)
	// Save inserts when ID is empty and replaces otherwise.
	Save(ctx context.Context, s Supplier) (Supplier, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps suppliers in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []Supplier
}

func NewMemoryStore(rows []Supplier) *MemoryStore {
	return &MemoryStore{rows: slices.Clone(rows)}
}

func (m *MemoryStore) List(_ context.Context) ([]Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.rows), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.rows {
		if s.ID == id {
			return s, nil
		}
	}
	return Supplier{}, ErrNotFound
}

func (m *MemoryStore) Save(_ context.Context, s Supplier) (Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
		m.rows = append(m.rows, s)
		return s, nil
	}
	for i := range m.rows {
		if m.rows[i].ID == s.ID {
			m.rows[i] = s
			return s, nil
		}
	}
	return Supplier{}, ErrNotFound
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.rows)
	m.rows = slices.DeleteFunc(m.rows, func(s Supplier) bool { return s.ID == id })
	if len(m.rows) == before {
		return ErrNotFound
	}
	return nil
}
