package mongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// Store reads the catalog from the products collection and writes orders to
// the orders and order_items collections.
type Store struct {
	db  *mongo.Database
	now func() time.Time
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// ListProducts returns every product ordered by category, then name.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "category", Value: 1},
		{Key: "name", Value: 1},
	})

	cursor, err := s.collection(ProductsCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := doc.toProduct()
		if err != nil {
			log.Printf("Warning: skipping product document: %v", err)
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

func (s *Store) CreateOrder(ctx context.Context, order models.OrderRequest) (string, error) {
	doc, err := newOrderDocument(order, s.now())
	if err != nil {
		return "", err
	}

	result, err := s.collection(OrdersCollection).InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}

	id, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected order id type %T", result.InsertedID)
	}
	return id.Hex(), nil
}

func (s *Store) CreateOrderItems(ctx context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	docs, err := newOrderItemDocuments(items, s.now())
	if err != nil {
		return err
	}
	_, err = s.collection(OrderItemsCollection).InsertMany(ctx, docs)
	return err
}

// DeleteOrder removes an order and any of its items that were written.
func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	oid, err := bson.ObjectIDFromHex(orderID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", orderID, err)
	}

	if _, err := s.collection(OrderItemsCollection).DeleteMany(ctx, bson.D{{Key: "order_id", Value: oid}}); err != nil {
		return err
	}
	result, err := s.collection(OrdersCollection).DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		log.Printf("Warning: order %s was already gone during cleanup", orderID)
	}
	return nil
}
