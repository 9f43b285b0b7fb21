package sales

import "time"

// LineRequest is one requested product+quantity in a create-sale call.
type LineRequest struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// SaleLine stores the product snapshot captured at reservation time. The
// snapshot, not the product row, is what keeps the sale renderable after the
// product is edited or deleted.
type SaleLine struct {
	ProductID       string  `json:"product"`
	ProductName     string  `json:"productName"`
	ProductCategory string  `json:"productCategory"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"price"`
}

func (l SaleLine) Subtotal() float64 { return l.UnitPrice * float64(l.Quantity) }

// Sale is immutable once persisted: created exactly once, never updated,
// never deleted by normal flow.
type Sale struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user"`
	Items     []SaleLine `json:"items"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Display sources for a resolved line. A live product wins when it still
// exists; the snapshot is the fallback, never the other way around.
const (
	SourceLive     = "live"
	SourceSnapshot = "snapshot"
)

// BuyerView is the resolved buyer reference for display. Deleted buyers keep
// their id with empty name/email.
type BuyerView struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// LineView is a sale line with display data resolved.
type LineView struct {
	ProductID string  `json:"product"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
	Subtotal  float64 `json:"subtotal"`
	Source    string  `json:"source"`
}

// SaleView is what list and export endpoints render.
type SaleView struct {
	ID        string     `json:"id"`
	Buyer     BuyerView  `json:"user"`
	Items     []LineView `json:"items"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"createdAt"`
}
