package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type stubSource struct {
	products []models.Product
	err      error
	calls    int
}

func (s *stubSource) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.calls++
	return s.products, s.err
}

func item(id string, category models.Category, price string, stock int) models.Product {
	return models.Product{ID: id, Name: id, Category: category, Price: decimal.RequireFromString(price), Stock: stock}
}

func TestLoadKeepsSnapshot(t *testing.T) {
	src := &stubSource{products: []models.Product{
		item("Book1", models.CategoryBooks, "12.00", 4),
		item("Pen1", models.CategoryStationery, "1.50", 40),
	}}
	c := New(src)

	products := c.Load(context.Background())

	assert.Len(t, products, 2)
	assert.False(t, c.IsEmpty())
	assert.False(t, c.LoadedAt().IsZero())

	found, err := c.Find("Pen1")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryStationery, found.Category)
}

func TestLoadFailureDegradesToEmpty(t *testing.T) {
	src := &stubSource{products: []models.Product{item("Book1", models.CategoryBooks, "1.00", 1)}}
	c := New(src)
	c.Load(context.Background())

	src.err = errors.New("connection refused")
	products := c.Load(context.Background())

	assert.Empty(t, products)
	assert.True(t, c.IsEmpty())
	_, err := c.Find("Book1")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductsReturnsCopy(t *testing.T) {
	c := New(&stubSource{products: []models.Product{item("Book1", models.CategoryBooks, "1.00", 1)}})
	c.Load(context.Background())

	products := c.Products()
	products[0].Stock = 99

	found, _ := c.Find("Book1")
	assert.Equal(t, 1, found.Stock)
}

func TestFilterByCategoryKeepsOrder(t *testing.T) {
	products := []models.Product{
		item("Book1", models.CategoryBooks, "1.00", 1),
		item("Pen1", models.CategoryStationery, "1.00", 1),
		item("Book2", models.CategoryBooks, "1.00", 1),
	}

	books := FilterByCategory(products, models.CategoryBooks)

	require.Len(t, books, 2)
	assert.Equal(t, "Book1", books[0].ID)
	assert.Equal(t, "Book2", books[1].ID)
	assert.NotNil(t, FilterByCategory(nil, models.CategoryBooks))
}

func TestPreviewCapsAtN(t *testing.T) {
	var products []models.Product
	for _, id := range []string{"b1", "b2", "b3", "b4", "b5"} {
		products = append(products, item(id, models.CategoryBooks, "1.00", 1))
	}
	products = append(products, item("p1", models.CategoryStationery, "1.00", 1))

	books := Preview(products, models.CategoryBooks, 3)
	stationery := Preview(products, models.CategoryStationery, 3)

	assert.Equal(t, []string{"b1", "b2", "b3"}, ids(books))
	assert.Equal(t, []string{"p1"}, ids(stationery))
}

func TestSortProducts(t *testing.T) {
	products := []models.Product{
		item("Ruler", models.CategoryStationery, "1.00", 1),
		item("Zen", models.CategoryBooks, "1.00", 1),
		item("Atlas", models.CategoryBooks, "1.00", 1),
	}

	SortProducts(products)

	assert.Equal(t, []string{"Atlas", "Zen", "Ruler"}, ids(products))
}

func TestSummarize(t *testing.T) {
	products := []models.Product{
		item("Atlas", models.CategoryBooks, "20.00", 2),
		item("Novel", models.CategoryBooks, "10.00", 15),
		item("Pen", models.CategoryStationery, "2.50", 0),
	}

	summary := Summarize(products, 10)

	assert.Equal(t, 3, summary.TotalProducts)
	require.Len(t, summary.Categories, 2)
	assert.Equal(t, models.CategoryBooks, summary.Categories[0].Category)
	assert.Equal(t, 2, summary.Categories[0].ProductCount)
	assert.Equal(t, 17, summary.Categories[0].UnitsInStock)
	assert.True(t, decimal.RequireFromString("190").Equal(summary.Categories[0].InventoryValue))
	assert.Equal(t, 1, summary.Categories[1].ProductCount)

	require.Len(t, summary.LowStock, 1)
	assert.Equal(t, "Only 2 left", summary.LowStock[0].Label)
	require.Len(t, summary.OutOfStock, 1)
	assert.Equal(t, "Pen", summary.OutOfStock[0].ProductID)
}

func ids(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
