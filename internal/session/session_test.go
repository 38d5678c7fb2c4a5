package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.Instrument(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty selection, got %q", got)
	}

	if err := s.SetInstrument(ctx, 7, "BTC/USDT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = s.Instrument(ctx, 7)
	if got != "BTC/USDT" {
		t.Fatalf("expected BTC/USDT, got %q", got)
	}

	if err := s.Clear(ctx, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = s.Instrument(ctx, 7)
	if got != "" {
		t.Fatalf("expected cleared selection, got %q", got)
	}
}

func TestMemoryStoreIsolatesChats(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.SetInstrument(ctx, 7, "EUR/USD")
	s.SetInstrument(ctx, 8, "GBP/USD")

	seven, _ := s.Instrument(ctx, 7)
	eight, _ := s.Instrument(ctx, 8)
	if seven != "EUR/USD" || eight != "GBP/USD" {
		t.Fatalf("expected isolated selections, got %q and %q", seven, eight)
	}
}

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, _ := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	got, err := s.Instrument(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty selection, got %q", got)
	}

	if err := s.SetInstrument(ctx, 7, "EUR/USD OTC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err = s.Instrument(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "EUR/USD OTC" {
		t.Fatalf("expected EUR/USD OTC, got %q", got)
	}

	if err := s.Clear(ctx, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = s.Instrument(ctx, 7)
	if got != "" {
		t.Fatalf("expected cleared selection, got %q", got)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	if err := s.SetInstrument(ctx, 7, "BTC/USDT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	got, err := s.Instrument(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected expired selection to read as unset, got %q", got)
	}
}
