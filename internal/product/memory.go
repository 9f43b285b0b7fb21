package product

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/retailops/backoffice/internal/inventory"
)

// MemoryStore keeps products in a map behind one mutex, which also makes it
// a valid inventory.Ledger: reserve, release and restock each hold the lock
// for their whole check-and-write, so no caller can observe a torn update.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]*Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: map[string]*Product{}}
}

func (s *MemoryStore) Create(ctx context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	s.m[p.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Product, 0, len(s.m))
	for _, p := range s.m {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[p.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Name = p.Name
	cur.Category = p.Category
	cur.Price = p.Price
	cur.UpdatedAt = time.Now().UTC()
	*p = *cur
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return ErrNotFound
	}
	delete(s.m, id)
	return nil
}

// inventory.Ledger implementation.

func (s *MemoryStore) GetStock(ctx context.Context, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[productID]
	if !ok {
		return 0, &inventory.NotFoundError{ProductID: productID}
	}
	return p.Stock, nil
}

func (s *MemoryStore) TryReserve(ctx context.Context, productID string, qty int) (inventory.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[productID]
	if !ok {
		return inventory.Reservation{}, &inventory.NotFoundError{ProductID: productID}
	}
	if p.Stock < qty {
		return inventory.Reservation{}, &inventory.InsufficientStockError{
			ProductID:   productID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   qty,
		}
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now().UTC()
	return inventory.Reservation{
		ProductID:       productID,
		Quantity:        qty,
		UnitPrice:       p.Price,
		ProductName:     p.Name,
		ProductCategory: p.Category,
	}, nil
}

func (s *MemoryStore) Release(ctx context.Context, res inventory.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[res.ProductID]
	if !ok {
		// Product deleted between reserve and release; nothing to restore.
		return nil
	}
	p.Stock += res.Quantity
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) Restock(ctx context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[productID]
	if !ok {
		return &inventory.NotFoundError{ProductID: productID}
	}
	p.Stock += qty
	p.UpdatedAt = time.Now().UTC()
	return nil
}

var _ Store = (*MemoryStore)(nil)
var _ inventory.Ledger = (*MemoryStore)(nil)
