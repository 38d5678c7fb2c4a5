package tui

import (
	"context"
	"hash/fnv"

	"pocket-signal-pro/internal/domain"
)

// UserQuerier provides the user roster to the TUI.
type UserQuerier interface {
	List() []domain.UserRecord
}

// Promoter verifies a pending user.
type Promoter interface {
	Promote(ctx context.Context, targetID int64) (domain.UserRecord, bool)
}

// AdvisorQuerier provides LLM support-assistant access to the TUI.
type AdvisorQuerier interface {
	Ask(ctx context.Context, chatID int64, message string) (string, error)
	Forget(chatID int64)
}

// FlagToggler exposes the auto-suggestion switch.
type FlagToggler interface {
	AutoSuggestions() bool
	SetAutoSuggestions(on bool)
}

// SignalSuggester produces a signal for a chosen instrument and expiry.
type SignalSuggester interface {
	Generate(instrument, duration string) domain.Signal
}

// SSHChatIDOffset is the base offset for synthetic chat IDs assigned to
// SSH sessions. The final chat ID is SSHChatIDOffset minus a hash of the
// login name, which keeps SSH conversations out of the Telegram ID space.
const SSHChatIDOffset int64 = -1_000_000

// Services bundles all dependencies injected into the TUI.
type Services struct {
	Users     UserQuerier
	Promoter  Promoter
	Advisor   AdvisorQuerier
	Flags     FlagToggler
	Suggester SignalSuggester
	Catalog   *domain.Catalog
	Username  string
}

// ChatID returns the synthetic chat ID for this SSH session.
func (s Services) ChatID() int64 {
	h := fnv.New32a()
	h.Write([]byte(s.Username))
	return SSHChatIDOffset - int64(h.Sum32())
}
