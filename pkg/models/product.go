package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the storefront department a product is listed under.
type Category string

const (
	CategoryBooks      Category = "books"
	CategoryStationery Category = "stationery"
)

// Categories lists every category in catalog order.
var Categories = []Category{CategoryBooks, CategoryStationery}

func (c Category) Valid() bool {
	return c == CategoryBooks || c == CategoryStationery
}

// Product is a read-only projection of a catalog row.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

func (p *Product) IsLowStock(threshold int) bool {
	return p.Stock > 0 && p.Stock < threshold
}

// StockLabel is the badge shown on a product card.
func (p *Product) StockLabel(threshold int) string {
	switch {
	case !p.IsInStock():
		return "Out of Stock"
	case p.IsLowStock(threshold):
		return fmt.Sprintf("Only %d left", p.Stock)
	default:
		return ""
	}
}
