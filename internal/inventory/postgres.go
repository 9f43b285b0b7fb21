package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGLedger keeps stock in the products table. The conditional UPDATE is the
// linearization point: the WHERE clause rejects oversell and the RETURNING
// clause captures the snapshot, all in one statement.
type PGLedger struct {
	DB *pgxpool.Pool
}

func (l *PGLedger) GetStock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := l.DB.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &NotFoundError{ProductID: productID}
	}
	if err != nil {
		return 0, fmt.Errorf("get stock: %w", translate(err))
	}
	return stock, nil
}

func (l *PGLedger) TryReserve(ctx context.Context, productID string, qty int) (Reservation, error) {
	res := Reservation{ProductID: productID, Quantity: qty}
	err := l.DB.QueryRow(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING name, category, price`,
		productID, qty,
	).Scan(&res.ProductName, &res.ProductCategory, &res.UnitPrice)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, fmt.Errorf("reserve stock: %w", translate(err))
	}

	// No row matched: either the product is gone or stock was short. The
	// follow-up read only classifies the failure; it plays no part in the
	// decrement itself.
	var available int
	var name string
	err = l.DB.QueryRow(ctx, `SELECT stock, name FROM products WHERE id=$1`, productID).
		Scan(&available, &name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, &NotFoundError{ProductID: productID}
	}
	if err != nil {
		return Reservation{}, fmt.Errorf("classify reserve failure: %w", translate(err))
	}
	return Reservation{}, &InsufficientStockError{
		ProductID:   productID,
		ProductName: name,
		Available:   available,
		Requested:   qty,
	}
}

// Release tolerates a missing row: a product deleted between reserve and
// release has no stock to take back.
func (l *PGLedger) Release(ctx context.Context, res Reservation) error {
	_, err := l.DB.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		res.ProductID, res.Quantity,
	)
	if err != nil {
		return fmt.Errorf("release reservation: %w", translate(err))
	}
	return nil
}

func (l *PGLedger) Restock(ctx context.Context, productID string, qty int) error {
	ct, err := l.DB.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		productID, qty,
	)
	if err != nil {
		return fmt.Errorf("restock: %w", translate(err))
	}
	if ct.RowsAffected() == 0 {
		return &NotFoundError{ProductID: productID}
	}
	return nil
}

var _ Ledger = (*PGLedger)(nil)

// translate maps Postgres serialization failures onto ErrConflict so callers
// can tell a retryable race from a hard failure.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		}
	}
	return err
}
