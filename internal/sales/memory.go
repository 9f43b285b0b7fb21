package sales

import (
	"context"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu    sync.RWMutex
	sales []*Sale
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(ctx context.Context, sale *Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sale
	cp.Items = append([]SaleLine(nil), sale.Items...)
	s.sales = append(s.sales, &cp)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		cp := *sale
		cp.Items = append([]SaleLine(nil), sale.Items...)
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
