package domain

import "time"

type VerificationState string

const (
	StateGuest    VerificationState = "guest"
	StatePending  VerificationState = "pending"
	StateVerified VerificationState = "verified"
)

// rank orders states along the only allowed direction of travel.
func (s VerificationState) rank() int {
	switch s {
	case StatePending:
		return 1
	case StateVerified:
		return 2
	default:
		return 0
	}
}

// CanAdvanceTo reports whether moving to next is a forward transition.
// There is no demotion path back to guest or pending.
func (s VerificationState) CanAdvanceTo(next VerificationState) bool {
	return next.rank() > s.rank()
}

// UserRecord is the durable per-caller record. It is created lazily on first
// contact and lives for the process lifetime. Admin membership is derived
// from configuration, never stored here.
type UserRecord struct {
	ID                 int64             `json:"id"`
	DisplayName        string            `json:"display_name"`
	State              VerificationState `json:"state"`
	SubmittedReference string            `json:"submitted_reference,omitempty"`
	FirstSeenAt        time.Time         `json:"first_seen_at"`
}

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleVerified   Role = "verified"
	RoleUnverified Role = "unverified"
)

type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// Signal is one generated directional call for an instrument/duration pick.
type Signal struct {
	Instrument string    `json:"instrument"`
	Duration   string    `json:"duration"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// VerificationEvent is emitted whenever a user's verification state changes,
// for admin-facing event streams.
type VerificationEvent struct {
	UserID      int64             `json:"user_id"`
	DisplayName string            `json:"display_name"`
	Reference   string            `json:"reference,omitempty"`
	State       VerificationState `json:"state"`
	At          time.Time         `json:"at"`
}
