package tui

import (
	"context"
	"testing"

	"pocket-signal-pro/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
)

// --- stub services ---

type stubUserQuerier struct {
	users []domain.UserRecord
}

func (s *stubUserQuerier) List() []domain.UserRecord {
	return append([]domain.UserRecord(nil), s.users...)
}

type stubPromoter struct {
	lastID  int64
	changed bool
	result  domain.UserRecord
}

func (s *stubPromoter) Promote(_ context.Context, targetID int64) (domain.UserRecord, bool) {
	s.lastID = targetID
	return s.result, s.changed
}

type stubAdvisorQuerier struct {
	reply     string
	err       error
	forgotten []int64
}

func (s *stubAdvisorQuerier) Ask(_ context.Context, _ int64, _ string) (string, error) {
	return s.reply, s.err
}

func (s *stubAdvisorQuerier) Forget(chatID int64) {
	s.forgotten = append(s.forgotten, chatID)
}

type stubFlagToggler struct {
	on bool
}

func (s *stubFlagToggler) AutoSuggestions() bool      { return s.on }
func (s *stubFlagToggler) SetAutoSuggestions(on bool) { s.on = on }

type stubSuggester struct {
	lastInstrument string
	lastDuration   string
}

func (s *stubSuggester) Generate(instrument, duration string) domain.Signal {
	s.lastInstrument = instrument
	s.lastDuration = duration
	return domain.Signal{
		Instrument: instrument,
		Duration:   duration,
		Direction:  domain.DirectionBuy,
		Confidence: 88.0,
	}
}

func testServices() Services {
	return Services{
		Users: &stubUserQuerier{users: []domain.UserRecord{
			{ID: 7, DisplayName: "ann", State: domain.StatePending, SubmittedReference: "ABC123"},
			{ID: 8, DisplayName: "bob", State: domain.StateVerified},
		}},
		Promoter:  &stubPromoter{changed: true, result: domain.UserRecord{ID: 7, State: domain.StateVerified}},
		Advisor:   &stubAdvisorQuerier{reply: "test reply"},
		Flags:     &stubFlagToggler{},
		Suggester: &stubSuggester{},
		Catalog:   domain.DefaultCatalog(),
		Username:  "ops",
	}
}

func TestAppModelInitialTab(t *testing.T) {
	m := NewAppModel(testServices())
	if m.ActiveTab() != TabUsers {
		t.Fatalf("expected TabUsers, got %d", m.ActiveTab())
	}
}

func TestAppModelTabSwitchByNumber(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	app := updated.(AppModel)
	if app.ActiveTab() != TabSignals {
		t.Fatalf("expected TabSignals after pressing 2, got %d", app.ActiveTab())
	}

	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	app = updated.(AppModel)
	if app.ActiveTab() != TabChat {
		t.Fatalf("expected TabChat after pressing 3, got %d", app.ActiveTab())
	}

	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	app = updated.(AppModel)
	if app.ActiveTab() != TabUsers {
		t.Fatalf("expected TabUsers after pressing 1, got %d", app.ActiveTab())
	}
}

func TestAppModelTabSwitchByTab(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	app := updated.(AppModel)
	if app.ActiveTab() != TabSignals {
		t.Fatalf("expected TabSignals after Tab, got %d", app.ActiveTab())
	}

	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	app = updated.(AppModel)
	if app.ActiveTab() != TabUsers {
		t.Fatalf("expected TabUsers after Shift+Tab, got %d", app.ActiveTab())
	}
}

func TestAppModelWindowResize(t *testing.T) {
	m := NewAppModel(testServices())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	app := updated.(AppModel)
	if app.width != 100 || app.height != 50 {
		t.Fatalf("expected 100x50, got %dx%d", app.width, app.height)
	}
}

func TestAppModelViewRendersWithoutPanic(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	for _, tab := range []Tab{TabUsers, TabSignals, TabChat} {
		m.activeTab = tab
		view := m.View()
		if view == "" {
			t.Fatalf("expected non-empty view for tab %d", tab)
		}
	}
}

func TestServicesChatIDIsStable(t *testing.T) {
	a := Services{Username: "ops"}
	b := Services{Username: "ops"}
	c := Services{Username: "other"}

	if a.ChatID() != b.ChatID() {
		t.Fatal("expected identical chat IDs for the same login")
	}
	if a.ChatID() == c.ChatID() {
		t.Fatal("expected different chat IDs for different logins")
	}
	if a.ChatID() > SSHChatIDOffset {
		t.Fatalf("expected chat ID at or below offset, got %d", a.ChatID())
	}
}
