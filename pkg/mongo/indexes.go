package mongo

import (
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"julianmorley.ca/con-plar/storefront/pkg/global"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Products Collection Indexes
	// Index 1: Compound index matching the catalog listing order
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().SetName("idx_category_name"),
		},
	},
	// Index 2: Low-stock lookups
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "stock", Value: 1}},
			Options: options.Index().SetName("idx_stock"),
		},
	},

	// Orders Collection Indexes
	// Index 3: Pending orders, newest first
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_status_created"),
		},
	},
	// Index 4: Orders by customer contact
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "customer_email", Value: 1}},
			Options: options.Index().SetName("idx_customer_email"),
		},
	},

	// Order Items Collection Indexes
	// Index 5: Items of one order
	{
		CollectionName: OrderItemsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetName("idx_order_items_order"),
		},
	},
}

func EnsureIndexes(db *mongo.Database) error {
	log.Println("Starting index creation...")

	for _, idxConfig := range requiredIndexes {
		if err := ensureIndex(db, idxConfig); err != nil {
			return err
		}
	}

	log.Println("All indexes created successfully!")
	return nil
}

func ensureIndex(db *mongo.Database, idxConfig IndexConfig) error {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	indexName, err := db.Collection(idxConfig.CollectionName).Indexes().CreateOne(ctx, idxConfig.IndexModel)
	if err != nil {
		log.Printf("Error creating index on collection %s: %v",
			idxConfig.CollectionName, err)
		return err
	}

	log.Printf("✓ Created index '%s' on collection '%s'", indexName, idxConfig.CollectionName)
	return nil
}

func EnsureIndexesOnStartup(db *mongo.Database) {
	if err := EnsureIndexes(db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
}
