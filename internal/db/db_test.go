package db

import (
	"context"
	"testing"
)

func TestInitPostgresNoDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	// Should log and return without touching the pool.
	InitPostgres(context.Background())
	if Pool != nil {
		t.Fatal("expected nil pool without a DSN")
	}
}
