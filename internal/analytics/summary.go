package analytics

import (
	"github.com/retailops/backoffice/internal/sales"
)

// Summary is the dashboard payload. Every slice is non-nil so an empty
// store renders as [] rather than null.
type Summary struct {
	Products ProductRollup `json:"products"`
	Sales    SalesRollup   `json:"sales"`
}

type ProductRollup struct {
	Total               int        `json:"total"`
	TotalInventoryUnits int        `json:"totalInventoryUnits"`
	InventoryValue      float64    `json:"inventoryValue"`
	LowStockItems       int        `json:"lowStockItems"`
	LowStockProducts    []LowStock `json:"lowStockProducts"`
}

type LowStock struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Stock     int    `json:"stock"`
}

type SalesRollup struct {
	TotalRevenue float64           `json:"totalRevenue"`
	TotalSales   int               `json:"totalSales"`
	BestSellers  []BestSeller      `json:"bestSellers"`
	RecentSales  []*sales.SaleView `json:"recentSales"`
	Trend        []TrendPoint      `json:"trend"`
}

type BestSeller struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// TrendPoint is one calendar day of the 7-day window. Days without sales are
// present with zeros; consumers never see gaps.
type TrendPoint struct {
	Date         string  `json:"date"`
	TotalRevenue float64 `json:"totalRevenue"`
	TotalSales   int     `json:"totalSales"`
}
