package global

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntOrDefault falls back to defaultValue when the variable is unset or not an integer.
func GetEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func GetDefaultTimer() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// GetStoreBackend reports which remote table store serves the catalog and the orders.
func GetStoreBackend() string {
	backend := strings.ToLower(GetEnvOrDefault("STORE_BACKEND", BackendMongo))
	if backend != BackendMongo && backend != BackendPostgres {
		log.Fatalf("STORE_BACKEND must be %q or %q, got %q", BackendMongo, BackendPostgres, backend)
	}
	return backend
}

func GetMongoURI() string {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI is not set in environment variables")
	}
	return mongoURI
}

func GetDatabaseName() string {
	return GetEnvOrDefault("MONGODB_DATABASE", "bookstore")
}

func GetPostgresDSN() string {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is not set in environment variables")
	}
	return dsn
}

func GetSessionTTL() time.Duration {
	return time.Duration(GetEnvIntOrDefault("SESSION_TTL_MINUTES", 60)) * time.Minute
}

func GetCatalogCacheTTL() time.Duration {
	return time.Duration(GetEnvIntOrDefault("CATALOG_CACHE_TTL_MINUTES", 5)) * time.Minute
}

func GetSubmitGuardTTL() time.Duration {
	return time.Duration(GetEnvIntOrDefault("SUBMIT_GUARD_SECONDS", 30)) * time.Second
}

func GetLowStockThreshold() int {
	return GetEnvIntOrDefault("LOW_STOCK_THRESHOLD", 10)
}

// GetAllowedOrigins splits CORS_ALLOWED_ORIGINS on commas, dropping empty entries.
func GetAllowedOrigins() []string {
	raw := GetEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
