package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

const OrderStatusPending = "pending"

// CustomerForm is the checkout form submitted by the shopper.
type CustomerForm struct {
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerEmail   string `json:"customer_email" binding:"required,email"`
	CustomerPhone   string `json:"customer_phone" binding:"required"`
	CustomerAddress string `json:"customer_address" binding:"required"`
}

// Trimmed returns the form with surrounding whitespace removed from every field.
func (f CustomerForm) Trimmed() CustomerForm {
	return CustomerForm{
		CustomerName:    strings.TrimSpace(f.CustomerName),
		CustomerEmail:   strings.TrimSpace(f.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(f.CustomerPhone),
		CustomerAddress: strings.TrimSpace(f.CustomerAddress),
	}
}

// EmptyFields lists, by json name, the fields that are blank once trimmed.
func (f CustomerForm) EmptyFields() []string {
	var fields []string
	for _, field := range []struct{ name, value string }{
		{"customer_name", f.CustomerName},
		{"customer_email", f.CustomerEmail},
		{"customer_phone", f.CustomerPhone},
		{"customer_address", f.CustomerAddress},
	} {
		if strings.TrimSpace(field.value) == "" {
			fields = append(fields, field.name)
		}
	}
	return fields
}

// OrderRequest is the record written to the orders table.
type OrderRequest struct {
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerAddress string          `json:"customer_address"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
}

func NewOrderRequest(form CustomerForm, total decimal.Decimal) OrderRequest {
	return OrderRequest{
		CustomerName:    form.CustomerName,
		CustomerEmail:   form.CustomerEmail,
		CustomerPhone:   form.CustomerPhone,
		CustomerAddress: form.CustomerAddress,
		TotalAmount:     total,
		Status:          OrderStatusPending,
	}
}

// OrderLineItem is one row of the order_items table. Price is the unit
// price captured when the order was submitted.
type OrderLineItem struct {
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// NewOrderLineItems builds one line item per cart line; orderID may be empty
// when the order id is not known yet.
func NewOrderLineItems(orderID string, lines []CartLine) []OrderLineItem {
	items := make([]OrderLineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderLineItem{
			OrderID:   orderID,
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
		})
	}
	return items
}

// WithOrderID stamps every item with the given order id.
func WithOrderID(items []OrderLineItem, orderID string) []OrderLineItem {
	stamped := make([]OrderLineItem, len(items))
	for i, item := range items {
		item.OrderID = orderID
		stamped[i] = item
	}
	return stamped
}
