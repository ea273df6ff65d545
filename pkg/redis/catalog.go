package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

const (
	DefaultCatalogKey = "catalog:products"
	DefaultCatalogTTL = 5 * time.Minute
)

// CachedSource is a read-through cache in front of a catalog source. Cache
// failures are logged and fall through to the source.
type CachedSource struct {
	client *redisclient.Client
	source catalog.Source
	key    string
	ttl    time.Duration
}

func NewCachedSource(client *redisclient.Client, source catalog.Source, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CachedSource{
		client: client,
		source: source,
		key:    DefaultCatalogKey,
		ttl:    ttl,
	}
}

func (c *CachedSource) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := c.cached(ctx)
	if err == nil {
		log.Printf("Catalog cache HIT (%d products)", len(products))
		return products, nil
	}
	if !errors.Is(err, redisclient.Nil) {
		log.Printf("Warning: failed to read catalog from Redis: %v", err)
	}

	products, err = c.source.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("Catalog cache MISS, fetched %d products", len(products))

	// An empty catalog is not cached so the next read asks the source again.
	if len(products) == 0 {
		return products, nil
	}
	if cacheErr := c.store(ctx, products); cacheErr != nil {
		log.Printf("Warning: failed to cache catalog in Redis: %v", cacheErr)
	}
	return products, nil
}

// Invalidate drops the cached snapshot so the next read hits the source.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

func (c *CachedSource) cached(ctx context.Context) ([]models.Product, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *CachedSource) store(ctx context.Context, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, data, c.ttl).Err()
}
