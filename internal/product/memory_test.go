package product

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backoffice/internal/inventory"
)

func seed(t *testing.T, s *MemoryStore, id, name string, price float64, stock int) {
	t.Helper()
	err := s.Create(context.Background(), &Product{
		ID:       id,
		Name:     name,
		Category: "general",
		Price:    price,
		Stock:    stock,
	})
	require.NoError(t, err)
}

func TestTryReserveDecrementsAndSnapshots(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "p1", "Teclado", 25.5, 10)

	res, err := s.TryReserve(context.Background(), "p1", 3)
	require.NoError(t, err)

	assert.Equal(t, "p1", res.ProductID)
	assert.Equal(t, 3, res.Quantity)
	assert.Equal(t, "Teclado", res.ProductName)
	assert.Equal(t, "general", res.ProductCategory)
	assert.Equal(t, 25.5, res.UnitPrice)

	stock, err := s.GetStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, stock)
}

func TestTryReserveInsufficientLeavesStockUntouched(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "p1", "Teclado", 25.5, 2)

	_, err := s.TryReserve(context.Background(), "p1", 3)
	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p1", stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	stock, err := s.GetStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
}

func TestTryReserveUnknownProduct(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.TryReserve(context.Background(), "ghost", 1)
	var nfErr *inventory.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "ghost", nfErr.ProductID)
}

func TestReleaseRestoresStock(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "p1", "Teclado", 25.5, 5)

	res, err := s.TryReserve(context.Background(), "p1", 4)
	require.NoError(t, err)
	require.NoError(t, s.Release(context.Background(), res))

	stock, err := s.GetStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, stock)
}

func TestReleaseAfterDeleteIsNoop(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "p1", "Teclado", 25.5, 5)

	res, err := s.TryReserve(context.Background(), "p1", 1)
	require.NoError(t, err)
	require.NoError(t, s.Delete(context.Background(), "p1"))
	assert.NoError(t, s.Release(context.Background(), res))
}

func TestRestock(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "p1", "Teclado", 25.5, 1)

	require.NoError(t, s.Restock(context.Background(), "p1", 9))
	stock, err := s.GetStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, stock)

	var nfErr *inventory.NotFoundError
	assert.ErrorAs(t, s.Restock(context.Background(), "ghost", 1), &nfErr)
}

// With stock=1 and N concurrent one-unit reservations, exactly one may win.
func TestTryReserveLinearizesConcurrentCallers(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "p1", "Teclado", 25.5, 1)

	const callers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, shortages := 0, 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.TryReserve(context.Background(), "p1", 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			var stockErr *inventory.InsufficientStockError
			if assert.ErrorAs(t, err, &stockErr) {
				shortages++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, shortages)

	stock, err := s.GetStock(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}

func TestUpdateKeepsStock(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, "p1", "Teclado", 25.5, 8)

	_, err := s.TryReserve(context.Background(), "p1", 2)
	require.NoError(t, err)

	p := &Product{ID: "p1", Name: "Teclado mecánico", Category: "perifericos", Price: 30}
	require.NoError(t, s.Update(context.Background(), p))
	assert.Equal(t, 6, p.Stock)

	got, err := s.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Teclado mecánico", got.Name)
	assert.Equal(t, 6, got.Stock)
}
