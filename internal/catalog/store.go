package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store persists products and exposes the warehouse reference list.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	ByID(ctx context.Context, id string) (Product, error)
	ByCode(ctx context.Context, code string) (Product, error)
	// Save inserts the product when ID is empty and replaces it otherwise.
	Save(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id string) error
	Warehouses(ctx context.Context) ([]Warehouse, error)
}

// MemoryStore keeps the catalog in process memory, preserving insertion order.
type MemoryStore struct {
	mu         sync.RWMutex
	products   []Product
	warehouses []Warehouse
}

// NewMemoryStore builds a store seeded with the given rows.
func NewMemoryStore(products []Product, warehouses []Warehouse) *MemoryStore {
	s := &MemoryStore{warehouses: slices.Clone(warehouses)}
	for _, p := range products {
		s.products = append(s.products, p.Clone())
	}
	return s
}

func (s *MemoryStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *MemoryStore) ByID(_ context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexByID(id); i >= 0 {
		return s.products[i].Clone(), nil
	}
	return Product{}, ErrNotFound
}

func (s *MemoryStore) ByCode(_ context.Context, code string) (Product, error) {
	code = strings.TrimSpace(code)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if strings.EqualFold(p.Code, code) {
			return p.Clone(), nil
		}
	}
	return Product{}, ErrNotFound
}

func (s *MemoryStore) Save(_ context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.ID != p.ID && strings.EqualFold(existing.Code, p.Code) {
			return Product{}, ErrDuplicateCode
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
		s.products = append(s.products, p.Clone())
		return p, nil
	}
	i := s.indexByID(p.ID)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	s.products[i] = p.Clone()
	return p, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByID(id)
	if i < 0 {
		return ErrNotFound
	}
	s.products = slices.Delete(s.products, i, i+1)
	return nil
}

func (s *MemoryStore) Warehouses(_ context.Context) ([]Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.warehouses), nil
}

func (s *MemoryStore) indexByID(id string) int {
	return slices.IndexFunc(s.products, func(p Product) bool { return p.ID == id })
}
