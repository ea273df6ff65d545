package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func setupMockDB(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStore(db), mock
}

func testOrder() models.OrderRequest {
	return models.NewOrderRequest(models.CustomerForm{
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		CustomerPhone:   "555-0100",
		CustomerAddress: "1 Main St",
	}, decimal.RequireFromString("27.50"))
}

func testItems() []models.OrderLineItem {
	return []models.OrderLineItem{
		{ProductID: "book-a", Quantity: 2, Price: decimal.RequireFromString("10.00")},
		{ProductID: "pen-b", Quantity: 1, Price: decimal.RequireFromString("7.50")},
	}
}

const insertTwoItems = "INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4), ($5, $6, $7, $8)"

func TestListProducts(t *testing.T) {
	store, mock := setupMockDB(t)
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "category", "image_url", "stock", "created_at"}).
		AddRow("1", "Atlas", "Maps of the world", "20.00", "books", "https://example.com/atlas.jpg", int64(3), created).
		AddRow("2", "Pen", nil, "1.25", "stationery", nil, int64(0), created)
	mock.ExpectQuery(selectProducts).WillReturnRows(rows)

	products, err := store.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "1", products[0].ID)
	assert.Equal(t, models.CategoryBooks, products[0].Category)
	assert.True(t, decimal.RequireFromString("20").Equal(products[0].Price))
	assert.Equal(t, 3, products[0].Stock)
	assert.True(t, created.Equal(products[0].CreatedAt))

	assert.Equal(t, "", products[1].Description)
	assert.Equal(t, "", products[1].ImageURL)
	assert.False(t, products[1].IsInStock())
}

func TestListProductsQueryError(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectQuery(selectProducts).WillReturnError(&pq.Error{Code: ErrCodeUndefinedTable, Message: `relation "products" does not exist`})

	_, err := store.ListProducts(context.Background())

	require.Error(t, err)
	assert.True(t, IsUndefinedTable(err))
	var pgErr *Error
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "SELECT", pgErr.Operation)
	assert.Equal(t, ProductsTable, pgErr.Table)
}

func TestCreateOrderReturnsID(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectQuery(insertOrder).
		WithArgs("Ada", "ada@example.com", "555-0100", "1 Main St", sqlmock.AnyArg(), models.OrderStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := store.CreateOrder(context.Background(), testOrder())

	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestCreateOrderItemsSingleStatement(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectExec(insertTwoItems).
		WithArgs("42", "book-a", 2, sqlmock.AnyArg(), "42", "pen-b", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := store.CreateOrderItems(context.Background(), models.WithOrderID(testItems(), "42"))

	require.NoError(t, err)
}

func TestCreateOrderItemsEmpty(t *testing.T) {
	store, _ := setupMockDB(t)

	assert.NoError(t, store.CreateOrderItems(context.Background(), nil))
}

func TestDeleteOrderRemovesItemsFirst(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectExec(deleteOrderItems).WithArgs("42").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteOrder).WithArgs("42").WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, store.DeleteOrder(context.Background(), "42"))
}

func TestPlaceOrderCommits(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(insertOrder).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("42"))
	mock.ExpectExec(insertTwoItems).
		WithArgs("42", "book-a", 2, sqlmock.AnyArg(), "42", "pen-b", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	id, err := store.PlaceOrder(context.Background(), testOrder(), testItems())

	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestPlaceOrderRollsBackOnItemFailure(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(insertOrder).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("42"))
	mock.ExpectExec(insertTwoItems).
		WillReturnError(&pq.Error{Code: ErrCodeForeignKeyViolation, Message: "insert or update on table \"order_items\" violates foreign key constraint"})
	mock.ExpectRollback()

	id, err := store.PlaceOrder(context.Background(), testOrder(), testItems())

	require.Error(t, err)
	assert.Empty(t, id)
	assert.True(t, IsForeignKeyViolation(err))
}

func TestPlaceOrderRollsBackOnOrderFailure(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(insertOrder).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := store.PlaceOrder(context.Background(), testOrder(), testItems())

	require.Error(t, err)
	var pgErr *Error
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, OrdersTable, pgErr.Table)
}

func TestInsertOrderItemsPlaceholders(t *testing.T) {
	query, args := insertOrderItems(models.WithOrderID(testItems(), "7"))

	assert.Equal(t, insertTwoItems, query)
	assert.Len(t, args, 8)
	assert.Equal(t, "7", args[0])
	assert.Equal(t, "pen-b", args[5])
}

func TestErrorMessage(t *testing.T) {
	err := wrapError(&pq.Error{Code: ErrCodeUniqueViolation, Message: "duplicate key", Detail: "Key (id)=(1) already exists."}, "INSERT", OrdersTable)

	assert.True(t, IsUniqueViolation(err))
	assert.Equal(t, "duplicate key [operation=INSERT, table=orders, code=23505] - Detail: Key (id)=(1) already exists.", err.Error())
	assert.Nil(t, wrapError(nil, "INSERT", OrdersTable))
}
