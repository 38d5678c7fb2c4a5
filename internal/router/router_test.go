package router

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pocket-signal-pro/internal/access"
	"pocket-signal-pro/internal/domain"
	"pocket-signal-pro/internal/session"
	"pocket-signal-pro/internal/signalgen"
	"pocket-signal-pro/internal/store"
	"pocket-signal-pro/internal/verify"

	"go.opentelemetry.io/otel/trace"
)

type nullNotifier struct{}

func (nullNotifier) Notify(context.Context, int64, string) error { return nil }

type fakeBroadcaster struct {
	lastText string
	sent     int
	failed   []int64
}

func (b *fakeBroadcaster) Broadcast(_ context.Context, text string) (int, []int64) {
	b.lastText = text
	return b.sent, b.failed
}

type fixture struct {
	router   *Router
	users    *store.UserStore
	sessions session.Store
	flags    *store.FeatureFlags
	cast     *fakeBroadcaster
}

func newFixture(policy verify.Policy, adminIDs ...int64) *fixture {
	users := store.NewUserStore(nil)
	sessions := session.NewMemoryStore()
	admins := access.NewAdminSet(adminIDs)
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	workflow := verify.NewWorkflow(users, admins, nullNotifier{}, policy, verify.NewBroker(), tracer)
	generator := signalgen.NewGenerator(70, 95, func() time.Time { return time.Unix(0, 0).UTC() })
	flags := store.NewFeatureFlags(true)
	cast := &fakeBroadcaster{sent: 3}
	r := New(users, sessions, admins, workflow, generator, domain.DefaultCatalog(), flags, cast, tracer)
	return &fixture{router: r, users: users, sessions: sessions, flags: flags, cast: cast}
}

func (f *fixture) verifyUser(t *testing.T, id int64) {
	t.Helper()
	f.users.GetOrCreate(id)
	if _, changed := f.users.AdvanceState(context.Background(), id, domain.StateVerified); !changed {
		t.Fatalf("could not verify user %d", id)
	}
}

func (f *fixture) token(t *testing.T, chatID int64, token string) domain.Screen {
	t.Helper()
	ins := f.router.Handle(context.Background(), Event{ChatID: chatID, Kind: KindToken, Payload: token})
	if ins.ChatID != chatID {
		t.Fatalf("instruction addressed to %d, want %d", ins.ChatID, chatID)
	}
	return ins.Screen
}

func TestStartAlwaysShowsWelcome(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	for _, id := range []int64{7, 42} {
		if _, ok := f.token(t, id, "start").(domain.WelcomeScreen); !ok {
			t.Fatalf("expected welcome for %d", id)
		}
	}
}

func TestMenuIsRoleSpecific(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	f.verifyUser(t, 7)

	if s, ok := f.token(t, 42, "menu").(domain.MenuScreen); !ok || s.Role != domain.RoleAdmin {
		t.Fatalf("expected admin menu, got %#v", s)
	}
	if s, ok := f.token(t, 7, "menu").(domain.MenuScreen); !ok || s.Role != domain.RoleVerified {
		t.Fatalf("expected verified menu, got %#v", s)
	}
	if _, ok := f.token(t, 8, "menu").(domain.RegistrationScreen); !ok {
		t.Fatal("expected registration redirect for guest")
	}
}

func TestUnverifiedContentRequestRedirects(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	for _, token := range []string{"signal", "category:crypto", "instrument:BTC/USDT", "duration:5 min"} {
		if _, ok := f.token(t, 8, token).(domain.RegistrationScreen); !ok {
			t.Fatalf("expected registration redirect for %q", token)
		}
	}
}

func TestFullSelectionRoundTrip(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	f.verifyUser(t, 7)

	cat, ok := f.token(t, 7, "signal").(domain.CategoryScreen)
	if !ok || len(cat.Categories) == 0 {
		t.Fatalf("expected category screen, got %#v", cat)
	}

	list, ok := f.token(t, 7, "category:crypto").(domain.InstrumentListScreen)
	if !ok || list.Category != domain.CategoryCrypto {
		t.Fatalf("expected crypto instrument list, got %#v", list)
	}

	durations, ok := f.token(t, 7, "instrument:BTC/USDT").(domain.DurationListScreen)
	if !ok || durations.Instrument.ID != "BTC/USDT" {
		t.Fatalf("expected duration list for BTC/USDT, got %#v", durations)
	}
	if durations.Durations[0] != "1 min" {
		t.Fatalf("expected regular durations, got %v", durations.Durations)
	}

	result, ok := f.token(t, 7, "duration:5 min").(domain.ResultScreen)
	if !ok {
		t.Fatalf("expected result screen, got %#v", result)
	}
	if result.Signal.Instrument != "BTC/USDT" {
		t.Fatalf("expected instrument round trip, got %q", result.Signal.Instrument)
	}
	if result.Signal.Duration != "5 min" {
		t.Fatalf("expected duration round trip, got %q", result.Signal.Duration)
	}
	if result.Signal.Confidence < 70 || result.Signal.Confidence > 95 {
		t.Fatalf("confidence %.1f out of bounds", result.Signal.Confidence)
	}
}

func TestAlwaysOpenInstrumentGetsSubMinuteDurations(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	f.verifyUser(t, 7)

	durations := f.token(t, 7, "instrument:EUR/USD OTC").(domain.DurationListScreen)
	if durations.Durations[0] != "5 sec" {
		t.Fatalf("expected sub-minute durations, got %v", durations.Durations)
	}
}

func TestDurationWithoutSelectionIsStaleNotCrash(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	f.verifyUser(t, 7)

	stale, ok := f.token(t, 7, "duration:5 min").(domain.StaleNavigationScreen)
	if !ok {
		t.Fatalf("expected stale navigation screen, got %#v", stale)
	}
	if len(stale.Categories) == 0 {
		t.Fatal("expected stale screen to offer categories")
	}
}

func TestReenteringCategoryScreenClearsSelection(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	f.verifyUser(t, 7)

	f.token(t, 7, "instrument:BTC/USDT")
	f.token(t, 7, "signal")

	if _, ok := f.token(t, 7, "duration:5 min").(domain.StaleNavigationScreen); !ok {
		t.Fatal("expected cleared selection after category re-entry")
	}
}

func TestSessionErrorDegradesToStale(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	f.verifyUser(t, 7)
	f.router.sessions = failingSessions{}

	if _, ok := f.token(t, 7, "duration:5 min").(domain.StaleNavigationScreen); !ok {
		t.Fatal("expected session failure to degrade to stale navigation")
	}
}

type failingSessions struct{}

func (failingSessions) SetInstrument(context.Context, int64, string) error {
	return errors.New("down")
}
func (failingSessions) Instrument(context.Context, int64) (string, error) {
	return "", errors.New("down")
}
func (failingSessions) Clear(context.Context, int64) error { return errors.New("down") }

func TestForgedDurationLabelIsUnhandled(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	f.verifyUser(t, 7)

	f.token(t, 7, "instrument:EUR/USD")
	if _, ok := f.token(t, 7, "duration:5 sec").(domain.UnhandledScreen); !ok {
		t.Fatal("expected sub-minute label on a regular pair to be unhandled")
	}
}

func TestUnknownTokenAcknowledgedGenerically(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	if _, ok := f.token(t, 7, "no-such-route").(domain.UnhandledScreen); !ok {
		t.Fatal("expected unhandled acknowledgment")
	}
}

func TestAdminRoutesRecheckRole(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	f.verifyUser(t, 7)

	// A verified user replaying leaked admin tokens gets an explicit denial.
	for _, token := range []string{"admin", "admin:users", "admin:verify:8", "admin:signals", "admin:toggle:on", "admin:commands", "admin:broadcast"} {
		if _, ok := f.token(t, 7, token).(domain.AccessDeniedScreen); !ok {
			t.Fatalf("expected access denied for %q", token)
		}
	}
}

func TestAdminUserListShowsRolesAndStates(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	f.token(t, 7, "start")
	f.verifyUser(t, 9)
	f.token(t, 9, "start")

	list, ok := f.token(t, 42, "admin:users").(domain.AdminUserListScreen)
	if !ok {
		t.Fatalf("expected user list, got %#v", list)
	}
	byID := make(map[int64]domain.AdminUserRow)
	for _, row := range list.Users {
		byID[row.User.ID] = row
	}
	if byID[7].Role != domain.RoleUnverified {
		t.Fatalf("expected 7 unverified, got %s", byID[7].Role)
	}
	if byID[9].Role != domain.RoleVerified {
		t.Fatalf("expected 9 verified, got %s", byID[9].Role)
	}
}

func TestAdminPromoteViaToken(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	f.token(t, 7, "start")

	list, ok := f.token(t, 42, "admin:verify:7").(domain.AdminUserListScreen)
	if !ok {
		t.Fatalf("expected refreshed user list, got %#v", list)
	}

	user, _ := f.users.Get(7)
	if user.State != domain.StateVerified {
		t.Fatalf("expected 7 verified after promote, got %s", user.State)
	}
}

func TestAdminToggleFlipsFlag(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)

	ctrl := f.token(t, 42, "admin:toggle:off").(domain.AdminSignalControlScreen)
	if ctrl.AutoSuggestions {
		t.Fatal("expected auto-suggestions off")
	}
	if f.flags.AutoSuggestions() {
		t.Fatal("expected process-wide flag off")
	}

	ctrl = f.token(t, 42, "admin:toggle:on").(domain.AdminSignalControlScreen)
	if !ctrl.AutoSuggestions {
		t.Fatal("expected auto-suggestions on")
	}
}

func TestBroadcastPromptArmsNextText(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)

	if _, ok := f.token(t, 42, "admin:broadcast").(domain.BroadcastPromptScreen); !ok {
		t.Fatal("expected broadcast prompt")
	}

	f.cast.sent = 2
	f.cast.failed = []int64{9}
	ins := f.router.Handle(context.Background(), Event{ChatID: 42, Kind: KindText, Payload: "hello all"})
	report, ok := ins.Screen.(domain.BroadcastReportScreen)
	if !ok {
		t.Fatalf("expected broadcast report, got %#v", ins.Screen)
	}
	if f.cast.lastText != "hello all" {
		t.Fatalf("expected broadcast body, got %q", f.cast.lastText)
	}
	if report.Sent != 2 || len(report.Failed) != 1 || report.Failed[0] != 9 {
		t.Fatalf("unexpected report %+v", report)
	}

	// The prompt is one-shot: the next admin text is not a broadcast.
	ins = f.router.Handle(context.Background(), Event{ChatID: 42, Kind: KindText, Payload: "hello again"})
	if ins.Screen != nil {
		t.Fatalf("expected no screen for unarmed admin text, got %#v", ins.Screen)
	}
}

func TestFreeTextFromGuestFeedsVerification(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)

	ins := f.router.Handle(context.Background(), Event{ChatID: 7, Kind: KindText, DisplayName: "alice", Payload: "REF-1"})
	ack, ok := ins.Screen.(domain.VerificationAckScreen)
	if !ok || ack.State != domain.StatePending {
		t.Fatalf("expected pending ack, got %#v", ins.Screen)
	}
}

func TestFreeTextFromVerifiedYieldsNoScreen(t *testing.T) {
	f := newFixture(verify.PolicyManual, 42)
	f.verifyUser(t, 7)

	ins := f.router.Handle(context.Background(), Event{ChatID: 7, Kind: KindText, Payload: "what now?"})
	if ins.Screen != nil {
		t.Fatalf("expected nil screen for verified free text, got %#v", ins.Screen)
	}
}

// The scenario walked end to end: admin set {42}, user 7 registers under the
// manual policy, is promoted, then walks crypto -> instrument -> duration to
// a result.
func TestManualVerificationScenario(t *testing.T) {
	users := store.NewUserStore(nil)
	sessions := session.NewMemoryStore()
	admins := access.NewAdminSet([]int64{42})
	tracer := trace.NewNoopTracerProvider().Tracer("test")

	notifier := &capturingNotifier{}
	workflow := verify.NewWorkflow(users, admins, notifier, verify.PolicyManual, verify.NewBroker(), tracer)
	generator := signalgen.NewGenerator(70, 95, nil)
	r := New(users, sessions, admins, workflow, generator, domain.DefaultCatalog(), store.NewFeatureFlags(true), nil, tracer)

	ctx := context.Background()

	ins := r.Handle(ctx, Event{ChatID: 7, DisplayName: "seven", Kind: KindCommand, Payload: "start"})
	if _, ok := ins.Screen.(domain.WelcomeScreen); !ok {
		t.Fatalf("expected welcome, got %#v", ins.Screen)
	}

	r.Handle(ctx, Event{ChatID: 7, DisplayName: "seven", Kind: KindText, Payload: "ABC123"})
	user, _ := users.Get(7)
	if user.State != domain.StatePending {
		t.Fatalf("expected pending, got %s", user.State)
	}
	if len(notifier.to42) != 1 {
		t.Fatalf("expected one admin notification, got %d", len(notifier.to42))
	}
	if !strings.Contains(notifier.to42[0], "7") || !strings.Contains(notifier.to42[0], "ABC123") {
		t.Fatalf("expected notification to carry user id and reference, got %q", notifier.to42[0])
	}

	r.Handle(ctx, Event{ChatID: 42, Kind: KindToken, Payload: "admin:verify:7"})
	user, _ = users.Get(7)
	if user.State != domain.StateVerified {
		t.Fatalf("expected verified, got %s", user.State)
	}

	r.Handle(ctx, Event{ChatID: 7, Kind: KindToken, Payload: "signal"})
	r.Handle(ctx, Event{ChatID: 7, Kind: KindToken, Payload: "category:crypto"})
	r.Handle(ctx, Event{ChatID: 7, Kind: KindToken, Payload: "instrument:BTC/USDT"})
	ins = r.Handle(ctx, Event{ChatID: 7, Kind: KindToken, Payload: "duration:5 min"})

	result, ok := ins.Screen.(domain.ResultScreen)
	if !ok {
		t.Fatalf("expected result, got %#v", ins.Screen)
	}
	if result.Signal.Instrument != "BTC/USDT" || result.Signal.Duration != "5 min" {
		t.Fatalf("unexpected result %+v", result.Signal)
	}
	if result.Signal.Confidence < 70 || result.Signal.Confidence > 95 {
		t.Fatalf("confidence %.1f out of bounds", result.Signal.Confidence)
	}
}

type capturingNotifier struct {
	to42 []string
}

func (n *capturingNotifier) Notify(_ context.Context, chatID int64, text string) error {
	if chatID == 42 {
		n.to42 = append(n.to42, text)
	}
	return nil
}
