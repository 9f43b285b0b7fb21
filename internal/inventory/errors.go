package inventory

import (
	"errors"
	"fmt"
)

// ErrConflict signals a storage-level concurrent-update race. Callers may
// retry or surface it as transient.
var ErrConflict = errors.New("concurrent update conflict")

// NotFoundError reports a reference to a product that does not exist.
type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// InsufficientStockError reports a reserve attempt that exceeded the stock
// available at the moment of the attempt.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available=%d requested=%d",
		e.ProductID, e.Available, e.Requested)
}
