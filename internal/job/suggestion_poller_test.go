package job

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"pocket-signal-pro/internal/domain"
	"pocket-signal-pro/internal/signalgen"
	"pocket-signal-pro/internal/store"

	"go.opentelemetry.io/otel/trace"
)

type recordingNotifier struct {
	sent map[int64][]string
}

func (n *recordingNotifier) Notify(_ context.Context, chatID int64, text string) error {
	if n.sent == nil {
		n.sent = make(map[int64][]string)
	}
	n.sent[chatID] = append(n.sent[chatID], text)
	return nil
}

func newTestPoller(flags *store.FeatureFlags, users *store.UserStore, notifier *recordingNotifier) *SuggestionPoller {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	generator := signalgen.NewGenerator(signalgen.DefaultMinConfidence, signalgen.DefaultMaxConfidence, time.Now)
	return NewSuggestionPoller(tracer, flags, users, generator, domain.DefaultCatalog(), notifier, time.Minute)
}

func verifiedUser(t *testing.T, users *store.UserStore, id int64) {
	t.Helper()
	users.Touch(context.Background(), id, fmt.Sprintf("user-%d", id))
	if _, ok := users.AdvanceState(context.Background(), id, domain.StateVerified); !ok {
		t.Fatalf("failed to verify user %d", id)
	}
}

func TestRunOnceSkipsWhenFlagOff(t *testing.T) {
	users := store.NewUserStore(nil)
	verifiedUser(t, users, 10)
	notifier := &recordingNotifier{}
	poller := newTestPoller(store.NewFeatureFlags(false), users, notifier)

	poller.runOnce(context.Background())
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no suggestions while disabled, got %+v", notifier.sent)
	}
}

func TestRunOnceNotifiesVerifiedUsersOnly(t *testing.T) {
	users := store.NewUserStore(nil)
	verifiedUser(t, users, 10)
	users.Touch(context.Background(), 20, "guest")
	notifier := &recordingNotifier{}
	poller := newTestPoller(store.NewFeatureFlags(true), users, notifier)

	poller.runOnce(context.Background())
	if len(notifier.sent[10]) != 1 {
		t.Fatalf("expected one suggestion for verified user, got %+v", notifier.sent)
	}
	if _, ok := notifier.sent[20]; ok {
		t.Fatal("guest must not receive suggestions")
	}
	if !strings.Contains(notifier.sent[10][0], "Suggested trade") {
		t.Fatalf("unexpected suggestion body: %s", notifier.sent[10][0])
	}
}

func TestRunOnceRotatesInstruments(t *testing.T) {
	users := store.NewUserStore(nil)
	verifiedUser(t, users, 10)
	notifier := &recordingNotifier{}
	poller := newTestPoller(store.NewFeatureFlags(true), users, notifier)

	poller.runOnce(context.Background())
	poller.runOnce(context.Background())

	msgs := notifier.sent[10]
	if len(msgs) != 2 {
		t.Fatalf("expected two suggestions, got %d", len(msgs))
	}
	if msgs[0] == msgs[1] {
		t.Fatal("expected consecutive ticks to cover different instruments")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	users := store.NewUserStore(nil)
	poller := newTestPoller(store.NewFeatureFlags(false), users, &recordingNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
