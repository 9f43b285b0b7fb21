package sales

import "context"

// Store persists sales. There is deliberately no update or delete: a Sale is
// a historical record.
type Store interface {
	// Create persists the sale and its lines as one write.
	Create(ctx context.Context, s *Sale) error
	// List returns all sales newest-first.
	List(ctx context.Context) ([]*Sale, error)
}
