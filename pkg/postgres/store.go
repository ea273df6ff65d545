package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	ProductsTable   = "products"
	OrdersTable     = "orders"
	OrderItemsTable = "order_items"
)

const selectProducts = `SELECT id, name, description, price, category, image_url, stock, created_at
FROM products
ORDER BY category ASC, name ASC`

const insertOrder = `INSERT INTO orders (customer_name, customer_email, customer_phone, customer_address, total_amount, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

const deleteOrderItems = `DELETE FROM order_items WHERE order_id = $1`

const deleteOrder = `DELETE FROM orders WHERE id = $1`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store reads the catalog from the products table and writes orders to the
// orders and order_items tables.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, selectProducts)
	if err != nil {
		return nil, wrapError(err, "SELECT", ProductsTable)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			product     models.Product
			category    string
			description sql.NullString
			imageURL    sql.NullString
		)
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&description,
			&product.Price,
			&category,
			&imageURL,
			&product.Stock,
			&product.CreatedAt,
		); err != nil {
			return nil, wrapError(err, "SCAN", ProductsTable)
		}
		product.Category = models.Category(category)
		product.Description = description.String
		product.ImageURL = imageURL.String
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "SELECT", ProductsTable)
	}
	return products, nil
}

func (s *Store) CreateOrder(ctx context.Context, order models.OrderRequest) (string, error) {
	return createOrder(ctx, s.db, order)
}

func (s *Store) CreateOrderItems(ctx context.Context, items []models.OrderLineItem) error {
	return createOrderItems(ctx, s.db, items)
}

func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	if _, err := s.db.ExecContext(ctx, deleteOrderItems, orderID); err != nil {
		return wrapError(err, "DELETE", OrderItemsTable)
	}
	if _, err := s.db.ExecContext(ctx, deleteOrder, orderID); err != nil {
		return wrapError(err, "DELETE", OrdersTable)
	}
	return nil
}

// PlaceOrder writes the order and its items in one transaction.
func (s *Store) PlaceOrder(ctx context.Context, order models.OrderRequest, items []models.OrderLineItem) (id string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
	}()

	id, err = createOrder(ctx, tx, order)
	if err != nil {
		return "", err
	}
	if err = createOrderItems(ctx, tx, models.WithOrderID(items, id)); err != nil {
		return "", err
	}
	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

func createOrder(ctx context.Context, q queryer, order models.OrderRequest) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, insertOrder,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.CustomerAddress,
		order.TotalAmount,
		order.Status,
	).Scan(&id)
	if err != nil {
		return "", wrapError(err, "INSERT", OrdersTable)
	}
	return id, nil
}

func createOrderItems(ctx context.Context, q queryer, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	query, args := insertOrderItems(items)
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return wrapError(err, "INSERT", OrderItemsTable)
	}
	return nil
}

// insertOrderItems builds one multi-row INSERT for all items.
func insertOrderItems(items []models.OrderLineItem) (string, []any) {
	const columns = 4

	var b strings.Builder
	b.WriteString("INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ")

	args := make([]any, 0, len(items)*columns)
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * columns
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, item.OrderID, item.ProductID, item.Quantity, item.Price)
	}
	return b.String(), args
}
