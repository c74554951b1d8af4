package sales

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Repository persists committed sales.
type Repository interface {
	// Append stores s, assigning an ID when empty.
	Append(ctx context.Context, s Sale) (Sale, error)
	List(ctx context.Context) ([]Sale, error)
	Get(ctx context.Context, id string) (Sale, error)
	SetStatus(ctx context.Context, id string, status Status) (Sale, error)
}

// PurchaseRepository persists supplier purchases.
type PurchaseRepository interface {
	AppendPurchase(ctx context.Context, p Purchase) (Purchase, error)
	ListPurchases(ctx context.Context) ([]Purchase, error)
}

// MemoryStore keeps sales and purchases in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	sales     []Sale
	purchases []Purchase
}

// NewMemoryStore builds a store seeded with the given records.
func NewMemoryStore(sales []Sale, purchases []Purchase) *MemoryStore {
	s := &MemoryStore{}
	for _, sale := range sales {
		s.sales = append(s.sales, cloneSale(sale))
	}
	for _, p := range purchases {
		p.Items = slices.Clone(p.Items)
		s.purchases = append(s.purchases, p)
	}
	return s
}

func (m *MemoryStore) Append(_ context.Context, s Sale) (Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sales {
		if existing.Series == s.Series && existing.Number == s.Number {
			return Sale{}, ErrDuplicateNumber
		}
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.sales = append(m.sales, cloneSale(s))
	return s, nil
}

func (m *MemoryStore) List(_ context.Context) ([]Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Sale, 0, len(m.sales))
	for _, s := range m.sales {
		out = append(out, cloneSale(s))
	}
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sales {
		if s.ID == id {
			return cloneSale(s), nil
		}
	}
	return Sale{}, ErrNotFound
}

func (m *MemoryStore) SetStatus(_ context.Context, id string, status Status) (Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sales {
		if m.sales[i].ID == id {
			m.sales[i].Status = status
			return cloneSale(m.sales[i]), nil
		}
	}
	return Sale{}, ErrNotFound
}

func (m *MemoryStore) AppendPurchase(_ context.Context, p Purchase) (Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Items = slices.Clone(p.Items)
	m.purchases = append(m.purchases, p)
	return p, nil
}

func (m *MemoryStore) ListPurchases(_ context.Context) ([]Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Purchase, 0, len(m.purchases))
	for _, p := range m.purchases {
		p.Items = slices.Clone(p.Items)
		out = append(out, p)
	}
	return out, nil
}

func cloneSale(s Sale) Sale {
	s.Items = slices.Clone(s.Items)
	return s
}
