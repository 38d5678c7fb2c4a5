package mcp

import (
	"fmt"
	"strings"

	"pocket-signal-pro/internal/domain"
)

type userEntry struct {
	ID                 int64  `json:"id"`
	DisplayName        string `json:"display_name"`
	State              string `json:"state"`
	SubmittedReference string `json:"submitted_reference,omitempty"`
}

type usersListInput struct {
	State string `json:"state,omitempty" jsonschema:"optional filter: guest, pending or verified"`
}

type usersListOutput struct {
	Users []userEntry `json:"users"`
}

type usersVerifyInput struct {
	ChatID int64 `json:"chat_id" jsonschema:"telegram chat id of the user to verify"`
}

type usersVerifyOutput struct {
	User    userEntry `json:"user"`
	Changed bool      `json:"changed"`
}

type flagsGetInput struct{}

type flagsGetOutput struct {
	AutoSuggestions bool `json:"auto_suggestions"`
}

type flagsSetInput struct {
	AutoSuggestions bool `json:"auto_suggestions" jsonschema:"new value of the auto-suggestion switch"`
}

type flagsSetOutput struct {
	AutoSuggestions bool `json:"auto_suggestions"`
}

type broadcastSendInput struct {
	Text string `json:"text" jsonschema:"message text delivered to every known user"`
}

type broadcastSendOutput struct {
	Sent   int     `json:"sent"`
	Failed []int64 `json:"failed"`
}

type signalsSuggestInput struct {
	Instrument string `json:"instrument" jsonschema:"catalog instrument id (e.g. EUR/USD)"`
	Duration   string `json:"duration,omitempty" jsonschema:"optional expiry label; defaults to the first valid one"`
}

type signalsSuggestOutput struct {
	Signal domain.Signal `json:"signal"`
}

type catalogOutput struct {
	Categories  []domain.Category   `json:"categories"`
	Instruments []domain.Instrument `json:"instruments"`
}

func normalizeState(raw string) (domain.VerificationState, error) {
	state := domain.VerificationState(strings.ToLower(strings.TrimSpace(raw)))
	switch state {
	case "", domain.StateGuest, domain.StatePending, domain.StateVerified:
		return state, nil
	}
	return "", fmt.Errorf("unsupported state: %s", raw)
}

func normalizeInstrument(catalog *domain.Catalog, raw string) (domain.Instrument, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return domain.Instrument{}, fmt.Errorf("instrument is required")
	}
	inst, ok := catalog.Lookup(id)
	if !ok {
		return domain.Instrument{}, fmt.Errorf("unknown instrument: %s", id)
	}
	return inst, nil
}

func normalizeDuration(inst domain.Instrument, raw string) (string, error) {
	label := strings.TrimSpace(raw)
	if label == "" {
		return domain.DurationsFor(inst)[0], nil
	}
	if !domain.ValidDuration(inst, label) {
		return "", fmt.Errorf("invalid duration %q for %s", label, inst.ID)
	}
	return label, nil
}

func toUserEntry(u domain.UserRecord) userEntry {
	return userEntry{
		ID:                 u.ID,
		DisplayName:        u.DisplayName,
		State:              string(u.State),
		SubmittedReference: u.SubmittedReference,
	}
}
