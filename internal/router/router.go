package router

import (
	"context"
	"log"
	"sync"

	"pocket-signal-pro/internal/access"
	"pocket-signal-pro/internal/domain"
	"pocket-signal-pro/internal/session"
	"pocket-signal-pro/internal/signalgen"
	"pocket-signal-pro/internal/store"
	"pocket-signal-pro/internal/verify"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EventKind discriminates the inbound event shapes the transport delivers.
type EventKind int

const (
	// KindCommand is a slash-command word ("start", "admin").
	KindCommand EventKind = iota
	// KindToken is a button press carrying an opaque action token.
	KindToken
	// KindText is a free-text message.
	KindText
)

// Event is one decoded inbound message. The transport has already stripped
// its wire format; the router only sees the caller identity and payload.
type Event struct {
	ChatID      int64
	DisplayName string
	Kind        EventKind
	Payload     string
}

// Instruction tells the transport what to render for one caller. A nil
// Screen means the router produced no reply of its own (free text from an
// already-verified caller, which the transport may hand to the advisor).
type Instruction struct {
	ChatID int64
	Screen domain.Screen
}

// Broadcaster delivers one text to every known user, tolerating partial
// failure.
type Broadcaster interface {
	Broadcast(ctx context.Context, text string) (sent int, failed []int64)
}

// Router maps (role, action, session context) to a screen. It owns the menu
// graph; durable user state lives in the store and selection state in the
// session context.
type Router struct {
	users     *store.UserStore
	sessions  session.Store
	admins    access.AdminSet
	workflow  *verify.Workflow
	generator *signalgen.Generator
	catalog   *domain.Catalog
	flags     *store.FeatureFlags
	broadcast Broadcaster
	tracer    trace.Tracer

	// armed tracks admins who pressed the broadcast prompt and whose next
	// free text is the broadcast body.
	armedMu sync.Mutex
	armed   map[int64]struct{}
}

func New(
	users *store.UserStore,
	sessions session.Store,
	admins access.AdminSet,
	workflow *verify.Workflow,
	generator *signalgen.Generator,
	catalog *domain.Catalog,
	flags *store.FeatureFlags,
	broadcast Broadcaster,
	tracer trace.Tracer,
) *Router {
	return &Router{
		users:     users,
		sessions:  sessions,
		admins:    admins,
		workflow:  workflow,
		generator: generator,
		catalog:   catalog,
		flags:     flags,
		broadcast: broadcast,
		tracer:    tracer,
		armed:     make(map[int64]struct{}),
	}
}

// Handle resolves one inbound event to a render instruction. It never
// returns an error for bad input: unknown tokens, unauthorized actions and
// stale context all map to their own screens.
func (r *Router) Handle(ctx context.Context, ev Event) Instruction {
	ctx, span := r.tracer.Start(ctx, "router.handle")
	span.SetAttributes(attribute.Int64("chat.id", ev.ChatID))
	defer span.End()

	user := r.users.Touch(ctx, ev.ChatID, ev.DisplayName)
	role := access.Classify(user, r.admins)

	switch ev.Kind {
	case KindText:
		return Instruction{ChatID: ev.ChatID, Screen: r.handleText(ctx, ev, role)}
	default:
		action := DecodeToken(ev.Payload)
		return Instruction{ChatID: ev.ChatID, Screen: r.handleAction(ctx, ev.ChatID, role, action)}
	}
}

func (r *Router) handleText(ctx context.Context, ev Event, role domain.Role) domain.Screen {
	if role == domain.RoleAdmin && r.disarm(ev.ChatID) {
		if r.broadcast == nil {
			return domain.BroadcastReportScreen{}
		}
		sent, failed := r.broadcast.Broadcast(ctx, ev.Payload)
		return domain.BroadcastReportScreen{Sent: sent, Failed: failed}
	}

	if access.CanViewContent(role) {
		// Already authorized: nothing for the verification workflow to do.
		// The transport may route this to the advisor.
		return nil
	}

	return r.workflow.SubmitReference(ctx, ev.ChatID, ev.DisplayName, ev.Payload)
}

func (r *Router) handleAction(ctx context.Context, chatID int64, role domain.Role, action Action) domain.Screen {
	switch act := action.(type) {
	case StartAction:
		return domain.WelcomeScreen{}

	case OpenMenuAction:
		if !access.CanViewContent(role) {
			return domain.RegistrationScreen{}
		}
		return domain.MenuScreen{Role: role}

	case GetSignalAction:
		if !access.CanViewContent(role) {
			return domain.RegistrationScreen{}
		}
		// Re-entering the category screen invalidates any previous pick.
		if err := r.sessions.Clear(ctx, chatID); err != nil {
			log.Printf("session clear failed for %d: %v", chatID, err)
		}
		return domain.CategoryScreen{Categories: r.catalog.Categories()}

	case CategoryAction:
		if !access.CanViewContent(role) {
			return domain.RegistrationScreen{}
		}
		if !r.catalog.HasCategory(act.Category) {
			return domain.UnhandledScreen{}
		}
		return domain.InstrumentListScreen{
			Category:    act.Category,
			Instruments: r.catalog.ByCategory(act.Category),
		}

	case InstrumentAction:
		if !access.CanViewContent(role) {
			return domain.RegistrationScreen{}
		}
		inst, ok := r.catalog.Lookup(act.InstrumentID)
		if !ok {
			return domain.UnhandledScreen{}
		}
		if err := r.sessions.SetInstrument(ctx, chatID, inst.ID); err != nil {
			log.Printf("session write failed for %d: %v", chatID, err)
		}
		return domain.DurationListScreen{Instrument: inst, Durations: domain.DurationsFor(inst)}

	case DurationAction:
		if !access.CanViewContent(role) {
			return domain.RegistrationScreen{}
		}
		return r.produceResult(ctx, chatID, act.Label)

	case InstructionAction:
		return domain.InstructionScreen{}

	case SupportAction:
		return domain.SupportScreen{}

	case AdminPanelAction:
		if role != domain.RoleAdmin {
			return domain.AccessDeniedScreen{}
		}
		return domain.AdminPanelScreen{}

	case AdminUsersAction:
		if role != domain.RoleAdmin {
			return domain.AccessDeniedScreen{}
		}
		return r.userList()

	case AdminVerifyAction:
		if role != domain.RoleAdmin {
			return domain.AccessDeniedScreen{}
		}
		r.workflow.Promote(ctx, act.TargetID)
		return r.userList()

	case AdminSignalControlAction:
		if role != domain.RoleAdmin {
			return domain.AccessDeniedScreen{}
		}
		return domain.AdminSignalControlScreen{AutoSuggestions: r.flags.AutoSuggestions()}

	case AdminToggleAction:
		if role != domain.RoleAdmin {
			return domain.AccessDeniedScreen{}
		}
		r.flags.SetAutoSuggestions(act.Enable)
		return domain.AdminSignalControlScreen{AutoSuggestions: r.flags.AutoSuggestions()}

	case AdminCommandsAction:
		if role != domain.RoleAdmin {
			return domain.AccessDeniedScreen{}
		}
		return domain.AdminCommandsScreen{}

	case BroadcastPromptAction:
		if role != domain.RoleAdmin {
			return domain.AccessDeniedScreen{}
		}
		r.arm(chatID)
		return domain.BroadcastPromptScreen{}

	case UnknownAction:
		return domain.UnhandledScreen{}

	default:
		return domain.UnhandledScreen{}
	}
}

// produceResult reads the selected instrument back from the session context.
// A missing selection (back-navigation race, expired session, double-tap on a
// stale keyboard) lands on the stale-navigation screen instead of crashing.
func (r *Router) produceResult(ctx context.Context, chatID int64, label string) domain.Screen {
	instrumentID, err := r.sessions.Instrument(ctx, chatID)
	if err != nil {
		log.Printf("session read failed for %d: %v", chatID, err)
		instrumentID = ""
	}
	if instrumentID == "" {
		return domain.StaleNavigationScreen{Categories: r.catalog.Categories()}
	}

	inst, ok := r.catalog.Lookup(instrumentID)
	if !ok {
		// Instrument left the catalog between selections.
		return domain.StaleNavigationScreen{Categories: r.catalog.Categories()}
	}
	if !domain.ValidDuration(inst, label) {
		return domain.UnhandledScreen{}
	}

	return domain.ResultScreen{Signal: r.generator.Generate(inst.ID, label)}
}

func (r *Router) userList() domain.Screen {
	users := r.users.List()
	rows := make([]domain.AdminUserRow, 0, len(users))
	for _, user := range users {
		rows = append(rows, domain.AdminUserRow{User: user, Role: access.Classify(user, r.admins)})
	}
	return domain.AdminUserListScreen{Users: rows}
}

func (r *Router) arm(chatID int64) {
	r.armedMu.Lock()
	defer r.armedMu.Unlock()
	r.armed[chatID] = struct{}{}
}

// disarm reports whether chatID was awaiting broadcast text and clears it.
func (r *Router) disarm(chatID int64) bool {
	r.armedMu.Lock()
	defer r.armedMu.Unlock()
	if _, ok := r.armed[chatID]; !ok {
		return false
	}
	delete(r.armed, chatID)
	return true
}
