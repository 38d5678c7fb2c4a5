package verify

import (
	"context"
	"fmt"
	"log"
	"time"

	"pocket-signal-pro/internal/access"
	"pocket-signal-pro/internal/domain"
	"pocket-signal-pro/internal/store"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Policy string

const (
	// PolicyAuto verifies a guest on their first free-text message.
	PolicyAuto Policy = "auto"
	// PolicyManual parks the guest as pending until an admin promotes them.
	PolicyManual Policy = "manual"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case PolicyAuto:
		return PolicyAuto, nil
	case PolicyManual:
		return PolicyManual, nil
	}
	return "", fmt.Errorf("unknown verification policy %q", raw)
}

// Notifier delivers one out-of-band message to a chat. Implementations are
// expected to block on delivery; the workflow only calls it after the store
// write has committed.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Workflow owns the guest -> pending -> verified transitions and the admin
// notification fan-out.
type Workflow struct {
	users    *store.UserStore
	admins   access.AdminSet
	notifier Notifier
	policy   Policy
	events   *Broker
	tracer   trace.Tracer
	now      func() time.Time
}

func NewWorkflow(users *store.UserStore, admins access.AdminSet, notifier Notifier, policy Policy, events *Broker, tracer trace.Tracer) *Workflow {
	if policy != PolicyAuto {
		policy = PolicyManual
	}
	return &Workflow{
		users:    users,
		admins:   admins,
		notifier: notifier,
		policy:   policy,
		events:   events,
		tracer:   tracer,
		now:      time.Now,
	}
}

func (w *Workflow) Policy() Policy {
	return w.policy
}

// SubmitReference handles a free-text message as a proof-of-registration
// submission. Already-verified callers are a no-op with respect to state and
// never re-trigger the admin fan-out.
func (w *Workflow) SubmitReference(ctx context.Context, userID int64, displayName, reference string) domain.Screen {
	ctx, span := w.tracer.Start(ctx, "verify.submit-reference")
	span.SetAttributes(attribute.Int64("user.id", userID))
	defer span.End()

	w.users.Touch(ctx, userID, displayName)

	var prior domain.VerificationState
	user := w.users.Update(ctx, userID, func(u *domain.UserRecord) {
		prior = u.State
		if u.State == domain.StateVerified {
			return
		}
		u.SubmittedReference = reference
		switch w.policy {
		case PolicyAuto:
			u.State = domain.StateVerified
		default:
			if u.State == domain.StateGuest {
				u.State = domain.StatePending
			}
		}
	})

	// The fan-out fires exactly once, on the edge out of guest (manual) or
	// into verified (auto). The store write above has already committed, so
	// an admin reading the registry now sees the new state.
	switch {
	case prior == domain.StateVerified:
		// Nothing changed; acknowledge only.
	case w.policy == PolicyAuto:
		w.publish(user)
		w.fanOut(ctx, fmt.Sprintf("User %d (%s) verified with reference %s", user.ID, label(user), reference))
	case prior == domain.StateGuest:
		w.publish(user)
		w.fanOut(ctx, fmt.Sprintf("New reference from %d (%s): %s", user.ID, label(user), reference))
	}

	return domain.VerificationAckScreen{State: user.State}
}

// Promote moves target to verified on behalf of an admin. It reports whether
// the state actually changed.
func (w *Workflow) Promote(ctx context.Context, targetID int64) (domain.UserRecord, bool) {
	ctx, span := w.tracer.Start(ctx, "verify.promote")
	span.SetAttributes(attribute.Int64("user.id", targetID))
	defer span.End()

	user, changed := w.users.AdvanceState(ctx, targetID, domain.StateVerified)
	if !changed {
		return user, false
	}

	w.publish(user)
	if w.notifier != nil {
		if err := w.notifier.Notify(ctx, targetID, "You are verified. Use /start to access signals."); err != nil {
			log.Printf("promotion notice to %d failed: %v", targetID, err)
		}
	}
	return user, true
}

// fanOut notifies every configured admin sequentially. A failed delivery is
// logged and the remaining recipients are still attempted; the state change
// that triggered the fan-out is authoritative either way.
func (w *Workflow) fanOut(ctx context.Context, text string) {
	if w.notifier == nil {
		return
	}
	for _, adminID := range w.admins.IDs() {
		if err := w.notifier.Notify(ctx, adminID, text); err != nil {
			log.Printf("admin notification to %d failed: %v", adminID, err)
		}
	}
}

func (w *Workflow) publish(user domain.UserRecord) {
	if w.events == nil {
		return
	}
	w.events.Publish(domain.VerificationEvent{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Reference:   user.SubmittedReference,
		State:       user.State,
		At:          w.now().UTC(),
	})
}

func label(user domain.UserRecord) string {
	if user.DisplayName == "" {
		return "unknown"
	}
	return user.DisplayName
}
