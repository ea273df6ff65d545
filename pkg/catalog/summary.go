package catalog

import (
	"github.com/shopspring/decimal"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type CategorySummary struct {
	Category       models.Category `json:"category"`
	ProductCount   int             `json:"product_count"`
	UnitsInStock   int             `json:"units_in_stock"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

type StockAlert struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  models.Category `json:"category"`
	Stock     int             `json:"stock"`
	Label     string          `json:"label"`
}

type Summary struct {
	TotalProducts     int               `json:"total_products"`
	LowStockThreshold int               `json:"low_stock_threshold"`
	Categories        []CategorySummary `json:"categories"`
	LowStock          []StockAlert      `json:"low_stock"`
	OutOfStock        []StockAlert      `json:"out_of_stock"`
}

// Summarize computes per-category stock figures and the stock alerts shown
// on product cards.
func Summarize(products []models.Product, lowStockThreshold int) Summary {
	summary := Summary{
		TotalProducts:     len(products),
		LowStockThreshold: lowStockThreshold,
		LowStock:          []StockAlert{},
		OutOfStock:        []StockAlert{},
	}

	byCategory := make(map[models.Category]*CategorySummary, len(models.Categories))
	for _, category := range models.Categories {
		summary.Categories = append(summary.Categories, CategorySummary{Category: category, InventoryValue: decimal.Zero})
	}
	for i := range summary.Categories {
		byCategory[summary.Categories[i].Category] = &summary.Categories[i]
	}

	for _, p := range products {
		if cs, ok := byCategory[p.Category]; ok {
			cs.ProductCount++
			cs.UnitsInStock += p.Stock
			cs.InventoryValue = cs.InventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
		}

		alert := StockAlert{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Stock:     p.Stock,
			Label:     p.StockLabel(lowStockThreshold),
		}
		switch {
		case !p.IsInStock():
			summary.OutOfStock = append(summary.OutOfStock, alert)
		case p.IsLowStock(lowStockThreshold):
			summary.LowStock = append(summary.LowStock, alert)
		}
	}

	return summary
}
