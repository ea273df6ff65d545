package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"julianmorley.ca/con-plar/storefront/pkg/global"
)

// Open connects to PostgreSQL and verifies the connection with a ping.
func Open(dsn string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, wrapError(err, "CONNECT", "")
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns / 2)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", wrapError(err, "PING", ""))
	}
	return db, nil
}

// InitPostgres opens the database from POSTGRES_DSN, exiting on failure.
func InitPostgres() *sql.DB {
	db, err := Open(global.GetPostgresDSN(), global.GetEnvIntOrDefault("POSTGRES_MAX_OPEN_CONNS", 10))
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	log.Println("Connected to PostgreSQL successfully")
	return db
}

// Ping reports whether PostgreSQL answers, for health checks.
func Ping(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}
