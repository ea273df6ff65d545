package redis

import (
	"context"
	"log"

	redisclient "github.com/redis/go-redis/v9"
	"julianmorley.ca/con-plar/storefront/pkg/global"
)

// RedisClient builds a client from REDIS_ADDRESS and REDIS_PASSWORD.
func RedisClient() *redisclient.Client {
	return redisclient.NewClient(&redisclient.Options{
		Addr:     global.GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		Password: global.GetEnvOrDefault("REDIS_PASSWORD", ""),
		DB:       0,
		Protocol: 2,
	})
}

func InitRedis(client *redisclient.Client) {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to ping Redis: %v", err)
	}

	log.Println("Connected to Redis successfully")
}

// Ping reports whether Redis answers, for health checks.
func Ping(ctx context.Context, client *redisclient.Client) error {
	return client.Ping(ctx).Err()
}
