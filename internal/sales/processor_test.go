package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/retailops/backoffice/internal/audit"
	"github.com/retailops/backoffice/internal/inventory"
	"github.com/retailops/backoffice/internal/product"
	"github.com/retailops/backoffice/internal/user"
)

type fixture struct {
	products  *product.MemoryStore
	sales     *MemoryStore
	users     *user.MemoryStore
	auditLog  *audit.MemoryStore
	processor *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		products: product.NewMemoryStore(),
		sales:    NewMemoryStore(),
		users:    user.NewMemoryStore(),
		auditLog: audit.NewMemoryStore(),
	}
	logger := zaptest.NewLogger(t)
	recorder := &audit.Recorder{Store: f.auditLog, Logger: logger, Service: "test"}
	f.processor = NewProcessor(f.products, f.sales, f.products, f.users, recorder, logger)
	return f
}

func (f *fixture) addProduct(t *testing.T, id, name string, price float64, stock int) {
	t.Helper()
	err := f.products.Create(context.Background(), &product.Product{
		ID: id, Name: name, Category: "general", Price: price, Stock: stock,
	})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	n, err := f.products.GetStock(context.Background(), id)
	require.NoError(t, err)
	return n
}

func TestCreateMultiLineSale(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Producto A", 5, 10)
	f.addProduct(t, "B", "Producto B", 20, 3)

	sale, err := f.processor.Create(context.Background(), "buyer-1", []LineRequest{
		{ProductID: "A", Quantity: 2},
		{ProductID: "B", Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 30.0, sale.Total)
	assert.Equal(t, 8, f.stock(t, "A"))
	assert.Equal(t, 2, f.stock(t, "B"))

	require.Len(t, sale.Items, 2)
	assert.Equal(t, "Producto A", sale.Items[0].ProductName)
	assert.Equal(t, 5.0, sale.Items[0].UnitPrice)
	assert.Equal(t, "Producto B", sale.Items[1].ProductName)
}

func TestCreateRollsBackOnInsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Producto A", 5, 10)
	f.addProduct(t, "B", "Producto B", 20, 3)

	_, err := f.processor.Create(context.Background(), "buyer-1", []LineRequest{
		{ProductID: "A", Quantity: 2},
		{ProductID: "B", Quantity: 5},
	})

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "B", stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)

	// The earlier reservation on A must have been released.
	assert.Equal(t, 10, f.stock(t, "A"))
	assert.Equal(t, 3, f.stock(t, "B"))

	all, err := f.sales.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateRollsBackOnUnknownProduct(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Producto A", 5, 10)

	_, err := f.processor.Create(context.Background(), "buyer-1", []LineRequest{
		{ProductID: "A", Quantity: 4},
		{ProductID: "ghost", Quantity: 1},
	})

	var nfErr *inventory.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "ghost", nfErr.ProductID)
	assert.Equal(t, 10, f.stock(t, "A"))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Producto A", 5, 10)

	cases := []struct {
		name  string
		buyer string
		items []LineRequest
	}{
		{"empty items", "buyer-1", nil},
		{"zero quantity", "buyer-1", []LineRequest{{ProductID: "A", Quantity: 0}}},
		{"negative quantity", "buyer-1", []LineRequest{{ProductID: "A", Quantity: -2}}},
		{"missing product id", "buyer-1", []LineRequest{{Quantity: 1}}},
		{"missing buyer", "", []LineRequest{{ProductID: "A", Quantity: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.processor.Create(context.Background(), tc.buyer, tc.items)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, 10, f.stock(t, "A"))
		})
	}
}

func TestTotalSurvivesPriceChange(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Producto A", 5, 10)

	sale, err := f.processor.Create(context.Background(), "buyer-1", []LineRequest{
		{ProductID: "A", Quantity: 2},
	})
	require.NoError(t, err)
	require.Equal(t, 10.0, sale.Total)

	err = f.products.Update(context.Background(), &product.Product{
		ID: "A", Name: "Producto A", Category: "general", Price: 99,
	})
	require.NoError(t, err)

	views, err := f.processor.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 10.0, views[0].Total)
	assert.Equal(t, 5.0, views[0].Items[0].UnitPrice)
}

func TestSnapshotSurvivesProductDeletion(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Producto A", 5, 10)

	_, err := f.processor.Create(context.Background(), "buyer-1", []LineRequest{
		{ProductID: "A", Quantity: 1},
	})
	require.NoError(t, err)
	require.NoError(t, f.products.Delete(context.Background(), "A"))

	views, err := f.processor.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)

	line := views[0].Items[0]
	assert.Equal(t, SourceSnapshot, line.Source)
	assert.Equal(t, "Producto A", line.Name)
	assert.Equal(t, "general", line.Category)
	assert.Equal(t, 5.0, line.UnitPrice)
}

func TestListPrefersLiveProductForDisplay(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Producto A", 5, 10)

	_, err := f.processor.Create(context.Background(), "buyer-1", []LineRequest{
		{ProductID: "A", Quantity: 1},
	})
	require.NoError(t, err)

	err = f.products.Update(context.Background(), &product.Product{
		ID: "A", Name: "Producto A v2", Category: "otros", Price: 5,
	})
	require.NoError(t, err)

	views, err := f.processor.List(context.Background())
	require.NoError(t, err)
	line := views[0].Items[0]
	assert.Equal(t, SourceLive, line.Source)
	assert.Equal(t, "Producto A v2", line.Name)
	assert.Equal(t, "otros", line.Category)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "C", "Producto C", 10, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.processor.Create(context.Background(), "buyer-1", []LineRequest{
				{ProductID: "C", Quantity: 3},
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var stockErr *inventory.InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 2, f.stock(t, "C"))
}

func TestCreateRecordsAuditEntry(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Producto A", 5, 10)

	sale, err := f.processor.Create(context.Background(), "buyer-1", []LineRequest{
		{ProductID: "A", Quantity: 2},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		entries, err := f.auditLog.Query(context.Background(), audit.Filter{}, 10)
		return err == nil && len(entries) == 1
	}, time.Second, 10*time.Millisecond)

	entries, err := f.auditLog.Query(context.Background(), audit.Filter{}, 10)
	require.NoError(t, err)
	e := entries[0]
	assert.Equal(t, audit.ActionSaleCreated, e.Action)
	assert.Equal(t, audit.EntitySale, e.EntityType)
	assert.Equal(t, sale.ID, e.EntityID)
	assert.Equal(t, "buyer-1", e.ActorID)
	assert.Equal(t, "Se registró una venta por $10.00", e.Details)
}

func TestListResolvesBuyer(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "Producto A", 5, 10)
	err := f.users.Create(context.Background(), &user.User{
		ID: "buyer-1", Name: "Ana", Email: "ana@example.com",
		Role: user.RoleVendor, Status: user.StatusActive,
	})
	require.NoError(t, err)

	_, err = f.processor.Create(context.Background(), "buyer-1", []LineRequest{
		{ProductID: "A", Quantity: 1},
	})
	require.NoError(t, err)

	views, err := f.processor.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana", views[0].Buyer.Name)
	assert.Equal(t, "ana@example.com", views[0].Buyer.Email)
}
