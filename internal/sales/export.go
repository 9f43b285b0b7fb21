package sales

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// utf8BOM makes spreadsheet software pick up the accented headers correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var exportHeader = []string{
	"Fecha", "Usuario", "Email", "Producto", "Categoría",
	"Cantidad", "Precio Unitario", "Subtotal", "Total Venta",
}

// WriteCSV renders one row per sale line. The sale-level columns (date,
// buyer, total) appear only on the first line of each sale and stay blank on
// the rest, matching how the dashboard export reads.
func WriteCSV(w io.Writer, views []*SaleView) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, v := range views {
		for i, l := range v.Items {
			row := []string{
				"", "", "",
				l.Name,
				l.Category,
				fmt.Sprintf("%d", l.Quantity),
				formatAmount(l.UnitPrice),
				formatAmount(l.Subtotal),
				"",
			}
			if i == 0 {
				row[0] = v.CreatedAt.Format(time.RFC3339)
				row[1] = v.Buyer.Name
				row[2] = v.Buyer.Email
				row[8] = formatAmount(v.Total)
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string { return fmt.Sprintf("%.2f", v) }
