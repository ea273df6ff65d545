package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	ProductsCollection   = "products"
	OrdersCollection     = "orders"
	OrderItemsCollection = "order_items"
)

// productDocument accepts the shapes seeded catalogs use in practice: an
// ObjectID or string _id, and a price stored as double, int or Decimal128.
type productDocument struct {
	ID          bson.RawValue `bson:"_id"`
	Name        string        `bson:"name"`
	Description string        `bson:"description"`
	Price       bson.RawValue `bson:"price"`
	Category    string        `bson:"category"`
	ImageURL    string        `bson:"image_url"`
	Stock       int           `bson:"stock"`
	CreatedAt   time.Time     `bson:"created_at"`
}

func (d productDocument) toProduct() (models.Product, error) {
	id, err := documentID(d.ID)
	if err != nil {
		return models.Product{}, err
	}
	price, err := decimalValue(d.Price)
	if err != nil {
		return models.Product{}, fmt.Errorf("product %s: %w", id, err)
	}
	return models.Product{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Category:    models.Category(d.Category),
		ImageURL:    d.ImageURL,
		Stock:       d.Stock,
		CreatedAt:   d.CreatedAt,
	}, nil
}

func documentID(v bson.RawValue) (string, error) {
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex(), nil
	}
	if s, ok := v.StringValueOK(); ok {
		return s, nil
	}
	return "", fmt.Errorf("unsupported _id type %s", v.Type)
}

func decimalValue(v bson.RawValue) (decimal.Decimal, error) {
	if d, ok := v.Decimal128OK(); ok {
		return decimal.NewFromString(d.String())
	}
	if f, ok := v.DoubleOK(); ok {
		return decimal.NewFromFloat(f), nil
	}
	if i, ok := v.Int32OK(); ok {
		return decimal.NewFromInt32(i), nil
	}
	if i, ok := v.Int64OK(); ok {
		return decimal.NewFromInt(i), nil
	}
	return decimal.Zero, fmt.Errorf("unsupported price type %s", v.Type)
}

func toDecimal128(d decimal.Decimal) (bson.Decimal128, error) {
	return bson.ParseDecimal128(d.String())
}

type orderDocument struct {
	ID              bson.ObjectID   `bson:"_id,omitempty"`
	CustomerName    string          `bson:"customer_name"`
	CustomerEmail   string          `bson:"customer_email"`
	CustomerPhone   string          `bson:"customer_phone"`
	CustomerAddress string          `bson:"customer_address"`
	TotalAmount     bson.Decimal128 `bson:"total_amount"`
	Status          string          `bson:"status"`
	CreatedAt       time.Time       `bson:"created_at"`
}

func newOrderDocument(order models.OrderRequest, now time.Time) (orderDocument, error) {
	total, err := toDecimal128(order.TotalAmount)
	if err != nil {
		return orderDocument{}, fmt.Errorf("invalid order total %s: %w", order.TotalAmount, err)
	}
	return orderDocument{
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		CustomerPhone:   order.CustomerPhone,
		CustomerAddress: order.CustomerAddress,
		TotalAmount:     total,
		Status:          order.Status,
		CreatedAt:       now,
	}, nil
}

type orderItemDocument struct {
	ID        bson.ObjectID   `bson:"_id,omitempty"`
	OrderID   bson.ObjectID   `bson:"order_id"`
	ProductID string          `bson:"product_id"`
	Quantity  int             `bson:"quantity"`
	Price     bson.Decimal128 `bson:"price"`
	CreatedAt time.Time       `bson:"created_at"`
}

func newOrderItemDocuments(items []models.OrderLineItem, now time.Time) ([]any, error) {
	docs := make([]any, 0, len(items))
	for _, item := range items {
		orderID, err := bson.ObjectIDFromHex(item.OrderID)
		if err != nil {
			return nil, fmt.Errorf("invalid order id %q: %w", item.OrderID, err)
		}
		price, err := toDecimal128(item.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid price %s for product %s: %w", item.Price, item.ProductID, err)
		}
		docs = append(docs, orderItemDocument{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
			CreatedAt: now,
		})
	}
	return docs, nil
}
