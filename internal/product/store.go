package product

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a product with the given ID does not exist.
var ErrNotFound = errors.New("product not found")

// Store covers catalogue CRUD. Stock mutations go through inventory.Ledger,
// never through Update.
type Store interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
