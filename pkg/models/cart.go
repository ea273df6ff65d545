package models

import "github.com/shopspring/decimal"

// CartLine pairs a product snapshot with the quantity in the active cart.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal uses the price held by the line's product snapshot.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// Quantity is a pointer so that an explicit 0 passes the required check.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}
