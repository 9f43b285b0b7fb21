package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/retailops/backoffice/internal/product"
	"github.com/retailops/backoffice/internal/sales"
	"github.com/retailops/backoffice/internal/user"
)

const (
	lowStockThreshold = 5
	topListSize       = 5
	trendDays         = 7
)

// Aggregator derives the dashboard summary from persisted products and
// sales. It only reads; the two scans run concurrently and the first failure
// fails the whole summary.
type Aggregator struct {
	products product.Store
	sales    sales.Store
	users    user.Store
	now      func() time.Time
}

func NewAggregator(products product.Store, saleStore sales.Store, users user.Store) *Aggregator {
	return &Aggregator{
		products: products,
		sales:    saleStore,
		users:    users,
		now:      time.Now,
	}
}

func (a *Aggregator) Summary(ctx context.Context) (*Summary, error) {
	var sum Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rollup, err := a.productRollup(gctx)
		if err != nil {
			return err
		}
		sum.Products = *rollup
		return nil
	})
	g.Go(func() error {
		rollup, err := a.salesRollup(gctx)
		if err != nil {
			return err
		}
		sum.Sales = *rollup
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (a *Aggregator) productRollup(ctx context.Context) (*ProductRollup, error) {
	all, err := a.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}

	rollup := &ProductRollup{LowStockProducts: []LowStock{}}
	var low []LowStock
	for _, p := range all {
		rollup.Total++
		rollup.TotalInventoryUnits += p.Stock
		rollup.InventoryValue += p.Price * float64(p.Stock)
		if p.Stock <= lowStockThreshold {
			rollup.LowStockItems++
			low = append(low, LowStock{
				ProductID: p.ID,
				Name:      p.Name,
				Category:  p.Category,
				Stock:     p.Stock,
			})
		}
	}

	sort.SliceStable(low, func(i, j int) bool { return low[i].Stock < low[j].Stock })
	if len(low) > topListSize {
		low = low[:topListSize]
	}
	rollup.LowStockProducts = append(rollup.LowStockProducts, low...)
	return rollup, nil
}

func (a *Aggregator) salesRollup(ctx context.Context) (*SalesRollup, error) {
	all, err := a.sales.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan sales: %w", err)
	}

	rollup := &SalesRollup{
		BestSellers: []BestSeller{},
		RecentSales: []*sales.SaleView{},
	}
	for _, s := range all {
		rollup.TotalRevenue += s.Total
		rollup.TotalSales++
	}

	// List is newest-first, so the recent slice is just the head.
	recent := all
	if len(recent) > topListSize {
		recent = recent[:topListSize]
	}
	for _, s := range recent {
		rollup.RecentSales = append(rollup.RecentSales, sales.ResolveView(ctx, s, a.products, a.users))
	}

	rollup.BestSellers = a.bestSellers(ctx, all)
	rollup.Trend = a.trend(all)
	return rollup, nil
}

// bestSellers ranks products by quantity sold across every historical sale.
// Ties break on revenue, then on product id so the order stays stable.
func (a *Aggregator) bestSellers(ctx context.Context, all []*sales.Sale) []BestSeller {
	type tally struct {
		quantity int
		revenue  float64
		name     string
		category string
	}
	byProduct := map[string]*tally{}
	for _, s := range all {
		for _, l := range s.Items {
			t, ok := byProduct[l.ProductID]
			if !ok {
				t = &tally{}
				byProduct[l.ProductID] = t
			}
			t.quantity += l.Quantity
			t.revenue += l.Subtotal()
			// Keep a snapshot for products that no longer exist.
			t.name = l.ProductName
			t.category = l.ProductCategory
		}
	}

	ranked := make([]BestSeller, 0, len(byProduct))
	for id, t := range byProduct {
		ranked = append(ranked, BestSeller{
			ProductID: id,
			Name:      t.name,
			Category:  t.category,
			Quantity:  t.quantity,
			Revenue:   t.revenue,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > topListSize {
		ranked = ranked[:topListSize]
	}

	// Prefer the live product for display, keep the snapshot as fallback.
	for i := range ranked {
		if p, err := a.products.Get(ctx, ranked[i].ProductID); err == nil {
			ranked[i].Name = p.Name
			ranked[i].Category = p.Category
		}
	}
	return ranked
}

// trend buckets sales into the 7 calendar days ending today, inclusive.
// Zero-filling is owned here: every day appears even with no sales.
func (a *Aggregator) trend(all []*sales.Sale) []TrendPoint {
	now := a.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(trendDays - 1))

	points := make([]TrendPoint, trendDays)
	index := map[string]int{}
	for i := 0; i < trendDays; i++ {
		day := start.AddDate(0, 0, i)
		key := dayKey(day)
		points[i] = TrendPoint{Date: key}
		index[key] = i
	}

	for _, s := range all {
		created := s.CreatedAt.In(now.Location())
		if created.Before(start) {
			continue
		}
		if i, ok := index[dayKey(created)]; ok {
			points[i].TotalRevenue += s.Total
			points[i].TotalSales++
		}
	}
	return points
}

func dayKey(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}
