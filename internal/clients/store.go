package clients

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Store persists clients.
type Store interface {
	List(ctx context.Context) ([]Client, error)
	Get(ctx context.Context, id string) (Client, error)
	// Save inserts when ID is empty and replaces otherwise.
	Save(ctx context.Context, c Client) (Client, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps clients in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []Client
}

// NewMemoryStore builds a store seeded with rows.
func NewMemoryStore(rows []Client) *MemoryStore {
	return &MemoryStore{rows: slices.Clone(rows)}
}

func (s *MemoryStore) List(_ context.Context) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rows), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.rows[i], nil
	}
	return Client{}, ErrNotFound
}

func (s *MemoryStore) Save(_ context.Context, c Client) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
		s.rows = append(s.rows, c)
		return c, nil
	}
	i := s.index(c.ID)
	if i < 0 {
		return Client{}, ErrNotFound
	}
	s.rows[i] = c
	return c, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.rows = slices.Delete(s.rows, i, i+1)
	return nil
}

func (s *MemoryStore) index(id string) int {
	return slices.IndexFunc(s.rows, func(c Client) bool { return c.ID == id })
}
