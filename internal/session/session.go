package session

import (
	"context"
	"sync"
)

// Store keeps the ephemeral per-chat navigation context. This is selection
// state, not user state: it may evaporate at any time and the router must
// treat a missing value as stale navigation, never as an error to the caller.
type Store interface {
	SetInstrument(ctx context.Context, chatID int64, instrumentID string) error
	// Instrument returns the selected instrument id, or "" when unset.
	Instrument(ctx context.Context, chatID int64) (string, error)
	Clear(ctx context.Context, chatID int64) error
}

// MemoryStore is the reference in-process implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	selected map[int64]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{selected: make(map[int64]string)}
}

func (s *MemoryStore) SetInstrument(_ context.Context, chatID int64, instrumentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[chatID] = instrumentID
	return nil
}

func (s *MemoryStore) Instrument(_ context.Context, chatID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[chatID], nil
}

func (s *MemoryStore) Clear(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, chatID)
	return nil
}
