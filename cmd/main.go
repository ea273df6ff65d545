package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"julianmorley.ca/con-plar/storefront/internal/router"
	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/mongo"
	"julianmorley.ca/con-plar/storefront/pkg/postgres"
	"julianmorley.ca/con-plar/storefront/pkg/redis"
	"julianmorley.ca/con-plar/storefront/pkg/storefront"
)

// tableStore is the remote store backing both the catalog and the orders.
type tableStore interface {
	catalog.Source
	checkout.OrderSink
}

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	redisClient := redis.RedisClient()
	redis.InitRedis(redisClient)
	defer redisClient.Close()

	checks := []router.HealthCheck{
		{Name: "redis", Ping: func(ctx context.Context) error { return redis.Ping(ctx, redisClient) }},
	}

	var store tableStore
	switch global.GetStoreBackend() {
	case global.BackendPostgres:
		db := postgres.InitPostgres()
		defer db.Close()
		store = postgres.NewStore(db)
		checks = append(checks, router.HealthCheck{Name: "database", Ping: func(ctx context.Context) error { return postgres.Ping(ctx, db) }})
	default:
		client := mongo.GetMongoClient()
		mongo.InitMongoDB(client)
		defer mongo.Disconnect(client)
		db := mongo.GetDatabase(client)
		mongo.EnsureIndexesOnStartup(db)
		store = mongo.NewStore(db)
		checks = append(checks, router.HealthCheck{Name: "database", Ping: func(ctx context.Context) error { return mongo.Ping(ctx, client) }})
	}

	products := catalog.New(redis.NewCachedSource(redisClient, store, global.GetCatalogCacheTTL()))
	ctx, cancel := global.GetDefaultTimer()
	log.Printf("Loaded %d products", len(products.Load(ctx)))
	cancel()

	sessions := redis.NewSessionStore(redisClient,
		redis.WithSessionTTL(global.GetSessionTTL()),
		redis.WithSubmitGuardTTL(global.GetSubmitGuardTTL()),
	)
	service := storefront.NewService(products, sessions, checkout.NewComposer(store),
		storefront.WithLowStockThreshold(global.GetLowStockThreshold()),
		storefront.WithSubmitTimeout(sessions.SubmitGuardTTL()*2/3),
	)

	engine := router.NewEngine(router.NewHandler(service, ai.NewClientFromEnv(), checks...))

	port := global.GetEnvOrDefault("PORT", "8000")
	log.Printf("Server is running on port %s", port)

	if err := engine.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
