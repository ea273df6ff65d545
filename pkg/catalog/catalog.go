// Package catalog keeps the storefront's snapshot of the remote products table.
package catalog

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

var ErrProductNotFound = errors.New("product not found")

// Source reads the products table, ordered by category then name.
type Source interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Catalog holds the last fetched product list. Products handed out are
// copies; the storefront never mutates catalog state.
type Catalog struct {
	source Source

	mu       sync.RWMutex
	products []models.Product
	loadedAt time.Time
}

func New(source Source) *Catalog {
	return &Catalog{source: source}
}

// Load fetches a fresh snapshot. A failed fetch is logged and leaves the
// storefront with an empty product list.
func (c *Catalog) Load(ctx context.Context) []models.Product {
	products, err := c.source.ListProducts(ctx)
	if err != nil {
		log.Printf("Error fetching products: %v", err)
		products = nil
	}
	SortProducts(products)

	c.mu.Lock()
	c.products = products
	c.loadedAt = time.Now()
	c.mu.Unlock()

	return c.Products()
}

func (c *Catalog) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	products := make([]models.Product, len(c.products))
	copy(products, c.products)
	return products
}

func (c *Catalog) Find(productID string) (models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

func (c *Catalog) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products) == 0
}

// LoadedAt is zero until the first Load.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// FilterByCategory keeps the products of one category in their original order.
func FilterByCategory(products []models.Product, category models.Category) []models.Product {
	filtered := []models.Product{}
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Preview returns at most n products of a category, in catalog order.
func Preview(products []models.Product, category models.Category, n int) []models.Product {
	filtered := FilterByCategory(products, category)
	if len(filtered) > n {
		filtered = filtered[:n]
	}
	return filtered
}

// SortProducts orders products by category, then name, matching the order
// the remote stores return.
func SortProducts(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Category != products[j].Category {
			return products[i].Category < products[j].Category
		}
		return products[i].Name < products[j].Name
	})
}
