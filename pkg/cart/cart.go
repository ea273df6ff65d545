// Package cart holds the shopping cart of a storefront session.
package cart

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

var ErrOutOfStock = errors.New("product is out of stock")

// Cart is an ordered set of lines, unique by product id. The zero value is an
// empty cart. Cart is not safe for concurrent use.
type Cart struct {
	lines []models.CartLine
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of product in the cart. An existing line grows by one
// until it reaches the product's stock, after which Add is a no-op. A new
// line for a product with no stock is refused with ErrOutOfStock.
func (c *Cart) Add(product models.Product) error {
	if i := c.index(product.ID); i >= 0 {
		if c.lines[i].Quantity < product.Stock {
			c.lines[i].Quantity++
		}
		return nil
	}
	if !product.IsInStock() {
		return ErrOutOfStock
	}
	c.lines = append(c.lines, models.CartLine{Product: product, Quantity: 1})
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Zero removes the line;
// stock is not re-checked here. Unknown ids and negative quantities are ignored.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity == 0 {
		c.Remove(productID)
		return
	}
	if quantity < 0 {
		return
	}
	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// ItemCount is the number of units in the cart, used for the header badge.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []models.CartLine {
	lines := make([]models.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

func (c *Cart) Line(productID string) (models.CartLine, bool) {
	if i := c.index(productID); i >= 0 {
		return c.lines[i], true
	}
	return models.CartLine{}, false
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Lines())
}

// UnmarshalJSON restores a persisted cart, dropping lines that could not have
// been produced by the cart operations.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	c.lines = nil
	for _, line := range lines {
		if line.Quantity <= 0 || c.index(line.Product.ID) >= 0 {
			continue
		}
		c.lines = append(c.lines, line)
	}
	return nil
}
