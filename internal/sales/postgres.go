package sales

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct {
	DB *pgxpool.Pool
}

// Create inserts the sale and all of its lines in one transaction, so a
// reader never observes a sale without its items.
func (r *PGStore) Create(ctx context.Context, s *Sale) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin sale tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO sales(id, user_id, total, created_at)
		VALUES ($1,$2,$3,$4)`,
		s.ID, s.UserID, s.Total, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for i, l := range s.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_items(sale_id, position, product_id, product_name,
			                       product_category, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			s.ID, i, l.ProductID, l.ProductName, l.ProductCategory, l.Quantity, l.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit sale: %w", err)
	}
	return nil
}

func (r *PGStore) List(ctx context.Context) ([]*Sale, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, total, created_at FROM sales ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []*Sale
	byID := map[string]*Sale{}
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.UserID, &s.Total, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
		byID[s.ID] = &s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	lineRows, err := r.DB.Query(ctx, `
		SELECT sale_id, product_id, product_name, product_category, quantity, unit_price
		FROM sale_items ORDER BY sale_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var saleID string
		var l SaleLine
		if err := lineRows.Scan(&saleID, &l.ProductID, &l.ProductName,
			&l.ProductCategory, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		if s, ok := byID[saleID]; ok {
			s.Items = append(s.Items, l)
		}
	}
	return out, lineRows.Err()
}

var _ Store = (*PGStore)(nil)
