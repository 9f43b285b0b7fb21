package inventory

import "context"

// Ledger is the only legal mutation path for stock. TryReserve must check
// and decrement in one indivisible step; "read, compare, write" split across
// calls is exactly what this interface exists to forbid.
type Ledger interface {
	GetStock(ctx context.Context, productID string) (int, error)

	// TryReserve decrements stock by qty when at least qty is available.
	// The returned Reservation carries the product snapshot captured at the
	// moment of the decrement.
	TryReserve(ctx context.Context, productID string, qty int) (Reservation, error)

	// Release is the compensating action for an earlier TryReserve.
	Release(ctx context.Context, res Reservation) error

	// Restock unconditionally increments stock.
	Restock(ctx context.Context, productID string, qty int) error
}

// Reservation records one successful decrement, revocable via Release until
// the sale that holds it commits. The snapshot fields are authoritative for
// the sale line: they are read under the same atomic step as the decrement.
type Reservation struct {
	ProductID       string
	Quantity        int
	UnitPrice       float64
	ProductName     string
	ProductCategory string
}
