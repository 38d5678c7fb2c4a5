package db

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

// InitPostgres connects the shared pool and ensures the user table exists.
// Without DATABASE_URL the service runs memory-only.
func InitPostgres(ctx context.Context) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("DATABASE_URL not set, skipping Postgres connection")
		return
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("failed to ping Postgres: %v", err)
	}
	if err := ensureSchema(ctx, pool); err != nil {
		log.Fatalf("failed to prepare schema: %v", err)
	}
	Pool = pool
	log.Println("Connected to Postgres")
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bot_users (
			chat_id             BIGINT PRIMARY KEY,
			display_name        TEXT NOT NULL DEFAULT '',
			state               TEXT NOT NULL DEFAULT 'guest',
			submitted_reference TEXT NOT NULL DEFAULT '',
			first_seen_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}
