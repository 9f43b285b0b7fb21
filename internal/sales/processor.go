package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/audit"
	"github.com/retailops/backoffice/internal/inventory"
	"github.com/retailops/backoffice/internal/product"
	"github.com/retailops/backoffice/internal/user"
)

// Processor turns a requested line-item list into either a fully-applied
// sale or no state change at all.
type Processor struct {
	ledger   inventory.Ledger
	store    Store
	products product.Store
	users    user.Store
	recorder *audit.Recorder
	logger   *zap.Logger
}

func NewProcessor(ledger inventory.Ledger, store Store, products product.Store,
	users user.Store, recorder *audit.Recorder, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		ledger:   ledger,
		store:    store,
		products: products,
		users:    users,
		recorder: recorder,
		logger:   logger,
	}
}

// Create runs the sale through its phases: validate, reserve every line,
// commit the snapshot, audit. A failed reservation releases everything
// reserved so far, so no partial decrement ever persists.
func (p *Processor) Create(ctx context.Context, buyerID string, items []LineRequest) (*Sale, error) {
	if buyerID == "" {
		return nil, validationErrorf("missing buyer")
	}
	if len(items) == 0 {
		return nil, validationErrorf("no items")
	}
	for _, it := range items {
		if it.ProductID == "" {
			return nil, validationErrorf("missing product reference")
		}
		if it.Quantity < 1 {
			return nil, validationErrorf("invalid quantity %d for product %s", it.Quantity, it.ProductID)
		}
	}

	reservations := make([]inventory.Reservation, 0, len(items))
	for _, it := range items {
		res, err := p.ledger.TryReserve(ctx, it.ProductID, it.Quantity)
		if err != nil {
			p.releaseAll(ctx, reservations)
			return nil, err
		}
		reservations = append(reservations, res)
	}

	sale := &Sale{
		ID:        uuid.NewString(),
		UserID:    buyerID,
		Items:     make([]SaleLine, 0, len(reservations)),
		CreatedAt: time.Now().UTC(),
	}
	for _, res := range reservations {
		line := SaleLine{
			ProductID:       res.ProductID,
			ProductName:     res.ProductName,
			ProductCategory: res.ProductCategory,
			Quantity:        res.Quantity,
			UnitPrice:       res.UnitPrice,
		}
		sale.Items = append(sale.Items, line)
		sale.Total += line.Subtotal()
	}

	if err := p.store.Create(ctx, sale); err != nil {
		p.releaseAll(ctx, reservations)
		return nil, fmt.Errorf("persist sale: %w", err)
	}

	p.recorder.RecordAsync(audit.Entry{
		Action:     audit.ActionSaleCreated,
		EntityType: audit.EntitySale,
		EntityID:   sale.ID,
		ActorID:    buyerID,
		Details:    fmt.Sprintf("Se registró una venta por $%.2f", sale.Total),
		Metadata: map[string]any{
			"total": sale.Total,
			"items": len(sale.Items),
		},
	})

	p.logger.Info("sale created",
		zap.String("sale_id", sale.ID),
		zap.String("buyer_id", buyerID),
		zap.Float64("total", sale.Total),
		zap.Int("lines", len(sale.Items)),
	)
	return sale, nil
}

// releaseAll undoes earlier reservations in reverse order. Release failures
// are logged; there is nothing further the caller can do with them.
func (p *Processor) releaseAll(ctx context.Context, reservations []inventory.Reservation) {
	for i := len(reservations) - 1; i >= 0; i-- {
		if err := p.ledger.Release(ctx, reservations[i]); err != nil {
			p.logger.Error("reservation release failed",
				zap.String("product_id", reservations[i].ProductID),
				zap.Int("quantity", reservations[i].Quantity),
				zap.Error(err),
			)
		}
	}
}

// List returns all sales newest-first with buyer and line display data
// resolved against the current catalogue, falling back to the stored
// snapshots for products that no longer exist.
func (p *Processor) List(ctx context.Context) ([]*SaleView, error) {
	all, err := p.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	views := make([]*SaleView, 0, len(all))
	for _, s := range all {
		views = append(views, ResolveView(ctx, s, p.products, p.users))
	}
	return views, nil
}

// ResolveView builds the display form of a sale: buyer name/email from the
// user store when the account still exists, line name/category from the live
// product when it still exists, snapshots otherwise.
func ResolveView(ctx context.Context, s *Sale, products product.Store, users user.Store) *SaleView {
	v := &SaleView{
		ID:        s.ID,
		Buyer:     BuyerView{ID: s.UserID},
		Items:     make([]LineView, 0, len(s.Items)),
		Total:     s.Total,
		CreatedAt: s.CreatedAt,
	}
	if u, err := users.Get(ctx, s.UserID); err == nil {
		v.Buyer.Name = u.Name
		v.Buyer.Email = u.Email
	}
	for _, l := range s.Items {
		lv := LineView{
			ProductID: l.ProductID,
			Name:      l.ProductName,
			Category:  l.ProductCategory,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
			Source:    SourceSnapshot,
		}
		if prod, err := products.Get(ctx, l.ProductID); err == nil {
			lv.Name = prod.Name
			lv.Category = prod.Category
			lv.Source = SourceLive
		}
		v.Items = append(v.Items, lv)
	}
	return v
}
