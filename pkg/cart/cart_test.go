package cart

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func product(id string, price string, stock int) models.Product {
	return models.Product{
		ID:       id,
		Name:     id,
		Price:    decimal.RequireFromString(price),
		Category: models.CategoryBooks,
		Stock:    stock,
	}
}

func TestAddStopsAtStock(t *testing.T) {
	for _, stock := range []int{1, 2, 5, 12} {
		c := New()
		p := product("book", "10.00", stock)

		for i := 0; i < stock+3; i++ {
			require.NoError(t, c.Add(p))
		}

		line, ok := c.Line("book")
		require.True(t, ok)
		assert.Equal(t, stock, line.Quantity, "stock=%d", stock)
		assert.Equal(t, 1, c.Len())
	}
}

func TestAddAtCeilingLeavesCartUnchanged(t *testing.T) {
	c := New()
	bookA := product("book-a", "10.00", 2)
	require.NoError(t, c.Add(bookA))
	require.NoError(t, c.Add(bookA))
	before := c.Lines()

	require.NoError(t, c.Add(bookA))

	assert.Equal(t, before, c.Lines())
}

func TestAddRefusesOutOfStockProduct(t *testing.T) {
	c := New()

	err := c.Add(product("sold-out", "4.00", 0))

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.True(t, c.IsEmpty())
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product("a", "1.00", 5)))
	require.NoError(t, c.Add(product("b", "1.00", 5)))
	require.NoError(t, c.Add(product("a", "1.00", 5)))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].Product.ID)
	assert.Equal(t, "b", lines[1].Product.ID)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product("book", "10.00", 3)))

	c.UpdateQuantity("book", 0)

	_, ok := c.Line("book")
	assert.False(t, ok)
	assert.True(t, c.IsEmpty())
}

func TestUpdateQuantityIsNotCheckedAgainstStock(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product("book", "10.00", 3)))

	c.UpdateQuantity("book", 8)

	line, _ := c.Line("book")
	assert.Equal(t, 8, line.Quantity)
}

func TestUpdateQuantityIgnoresUnknownAndNegative(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product("book", "10.00", 3)))

	c.UpdateQuantity("missing", 4)
	c.UpdateQuantity("book", -2)

	line, _ := c.Line("book")
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, 1, c.Len())
}

func TestRemoveIsIdempotent(t *testing.T) {
	once := New()
	twice := New()
	for _, c := range []*Cart{once, twice} {
		require.NoError(t, c.Add(product("a", "1.00", 5)))
		require.NoError(t, c.Add(product("b", "2.00", 5)))
	}

	once.Remove("a")
	twice.Remove("a")
	twice.Remove("a")
	twice.Remove("never-added")

	assert.Equal(t, once.Lines(), twice.Lines())
}

func TestTotalsScenario(t *testing.T) {
	c := New()
	bookA := product("book-a", "10.00", 5)
	penB := product("pen-b", "2.50", 5)
	require.NoError(t, c.Add(bookA))
	require.NoError(t, c.Add(bookA))
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Add(penB))
	}

	assert.True(t, decimal.RequireFromString("27.50").Equal(c.Total()), "total=%s", c.Total())
	assert.Equal(t, 5, c.ItemCount())
}

func TestTotalTracksMutations(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product("a", "0.10", 10)))
	require.NoError(t, c.Add(product("b", "0.20", 10)))
	assert.True(t, decimal.RequireFromString("0.30").Equal(c.Total()))

	c.UpdateQuantity("a", 3)
	assert.True(t, decimal.RequireFromString("0.50").Equal(c.Total()))

	c.Remove("b")
	assert.True(t, decimal.RequireFromString("0.30").Equal(c.Total()))
	assert.Equal(t, 3, c.ItemCount())

	c.Clear()
	assert.True(t, c.Total().IsZero())
	assert.Equal(t, 0, c.ItemCount())
}

func TestItemCountIndependentOfLineCount(t *testing.T) {
	single := New()
	require.NoError(t, single.Add(product("a", "1.00", 10)))
	single.UpdateQuantity("a", 4)

	many := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, many.Add(product(id, "1.00", 10)))
	}

	assert.Equal(t, single.ItemCount(), many.ItemCount())
}

func TestLinesReturnsCopy(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product("a", "1.00", 10)))

	lines := c.Lines()
	lines[0].Quantity = 50

	line, _ := c.Line("a")
	assert.Equal(t, 1, line.Quantity)
}

func TestJSONRoundTrip(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(product("a", "10.00", 10)))
	require.NoError(t, c.Add(product("b", "2.50", 10)))
	c.UpdateQuantity("b", 3)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	restored := New()
	require.NoError(t, json.Unmarshal(data, restored))

	assert.Equal(t, c.ItemCount(), restored.ItemCount())
	assert.True(t, c.Total().Equal(restored.Total()))
	assert.Equal(t, "a", restored.Lines()[0].Product.ID)
}

func TestUnmarshalDropsInvalidLines(t *testing.T) {
	data := []byte(`[
		{"product":{"id":"a","price":"1"},"quantity":2},
		{"product":{"id":"a","price":"1"},"quantity":5},
		{"product":{"id":"b","price":"1"},"quantity":0}
	]`)

	c := New()
	require.NoError(t, json.Unmarshal(data, c))

	require.Equal(t, 1, c.Len())
	line, _ := c.Line("a")
	assert.Equal(t, 2, line.Quantity)
}
