package sales

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	views := []*SaleView{
		{
			ID:    "s1",
			Buyer: BuyerView{ID: "u1", Name: "Ana", Email: "ana@example.com"},
			Items: []LineView{
				{ProductID: "A", Name: "Teclado", Category: "perifericos", Quantity: 2, UnitPrice: 25.5, Subtotal: 51},
				{ProductID: "B", Name: "Mouse", Category: "perifericos", Quantity: 1, UnitPrice: 10, Subtotal: 10},
			},
			Total:     61,
			CreatedAt: created,
		},
		{
			ID:    "s2",
			Buyer: BuyerView{ID: "u2", Name: "Luis", Email: "luis@example.com"},
			Items: []LineView{
				{ProductID: "A", Name: "Teclado", Category: "perifericos", Quantity: 1, UnitPrice: 25.5, Subtotal: 25.5},
			},
			Total:     25.5,
			CreatedAt: created.Add(time.Hour),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, views))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), "missing UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 3 lines

	assert.Equal(t, []string{
		"Fecha", "Usuario", "Email", "Producto", "Categoría",
		"Cantidad", "Precio Unitario", "Subtotal", "Total Venta",
	}, records[0])

	// First line of the first sale carries the sale-level columns.
	assert.Equal(t, "2024-03-15T10:30:00Z", records[1][0])
	assert.Equal(t, "Ana", records[1][1])
	assert.Equal(t, "ana@example.com", records[1][2])
	assert.Equal(t, "Teclado", records[1][3])
	assert.Equal(t, "2", records[1][5])
	assert.Equal(t, "25.50", records[1][6])
	assert.Equal(t, "51.00", records[1][7])
	assert.Equal(t, "61.00", records[1][8])

	// Second line of the same sale leaves them blank.
	assert.Equal(t, "", records[2][0])
	assert.Equal(t, "", records[2][1])
	assert.Equal(t, "", records[2][2])
	assert.Equal(t, "Mouse", records[2][3])
	assert.Equal(t, "", records[2][8])

	// Next sale starts a fresh block.
	assert.Equal(t, "Luis", records[3][1])
	assert.Equal(t, "25.50", records[3][8])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))
	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
