package mcp

import (
	"context"

	"pocket-signal-pro/internal/domain"
)

// UserDirectory exposes the known users.
type UserDirectory interface {
	List() []domain.UserRecord
}

// Promoter advances a user to verified.
type Promoter interface {
	Promote(ctx context.Context, targetID int64) (domain.UserRecord, bool)
}

// Broadcaster delivers one text to every known user.
type Broadcaster interface {
	Broadcast(ctx context.Context, text string) (sent int, failed []int64)
}

// Suggester produces a signal for a validated pick.
type Suggester interface {
	Generate(instrument, duration string) domain.Signal
}

// FlagStore reads and writes the auto-suggestion switch.
type FlagStore interface {
	AutoSuggestions() bool
	SetAutoSuggestions(enabled bool)
}
