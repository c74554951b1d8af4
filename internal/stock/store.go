package stock

import (
	"context"
	"sync"
)

// Store persists allocation rows keyed by (product, warehouse).
type Store interface {
	ByWarehouse(ctx context.Context, warehouseID string) ([]Allocation, error)
	ByProduct(ctx context.Context, productID string) ([]Allocation, error)
	// Replace atomically swaps every row of productID for rows.
	Replace(ctx context.Context, productID string, rows []Allocation) error
}

// MemoryStore keeps allocation rows in a slice, in insertion order.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []Allocation
}

// NewMemoryStore builds a store seeded with rows.
func NewMemoryStore(rows []Allocation) *MemoryStore {
	s := &MemoryStore{}
	for _, r := range rows {
		s.rows = append(s.rows, r.clone())
	}
	return s
}

func (s *MemoryStore) ByWarehouse(_ context.Context, warehouseID string) ([]Allocation, error) {
	return s.filter(func(a Allocation) bool { return a.WarehouseID == warehouseID }), nil
}

func (s *MemoryStore) ByProduct(_ context.Context, productID string) ([]Allocation, error) {
	return s.filter(func(a Allocation) bool { return a.ProductID == productID }), nil
}

func (s *MemoryStore) Replace(_ context.Context, productID string, rows []Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0:0]
	for _, r := range s.rows {
		if r.ProductID != productID {
			kept = append(kept, r)
		}
	}
	for _, r := range rows {
		r.ProductID = productID
		kept = append(kept, r.clone())
	}
	s.rows = kept
	return nil
}

func (s *MemoryStore) filter(keep func(Allocation) bool) []Allocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Allocation
	for _, r := range s.rows {
		if keep(r) {
			out = append(out, r.clone())
		}
	}
	return out
}
