package tui

import (
	"fmt"
	"strings"

	"pocket-signal-pro/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Signal desk message types.
type suggestionMsg domain.Signal
type flagChangedMsg bool

// SignalDeskModel is the Bubble Tea model for the signal control screen.
type SignalDeskModel struct {
	services    Services
	instruments []domain.Instrument
	pairIdx     int
	expiryIdx   int
	lastSignal  *domain.Signal
	flagOn      bool
	width       int
	height      int
}

// NewSignalDeskModel creates a new signal desk model.
func NewSignalDeskModel(svc Services) SignalDeskModel {
	var instruments []domain.Instrument
	if svc.Catalog != nil {
		instruments = svc.Catalog.Instruments()
	}
	m := SignalDeskModel{
		services:    svc,
		instruments: instruments,
	}
	if svc.Flags != nil {
		m.flagOn = svc.Flags.AutoSuggestions()
	}
	return m
}

// Init is a no-op; the desk acts only on key presses.
func (m SignalDeskModel) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages.
func (m SignalDeskModel) Update(msg tea.Msg) (SignalDeskModel, tea.Cmd) {
	switch msg := msg.(type) {
	case suggestionMsg:
		sig := domain.Signal(msg)
		m.lastSignal = &sig
		return m, nil

	case flagChangedMsg:
		m.flagOn = bool(msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.CyclePair):
			if len(m.instruments) > 0 {
				m.pairIdx = (m.pairIdx + 1) % len(m.instruments)
				m.expiryIdx = 0
			}
			return m, nil

		case key.Matches(msg, DefaultKeyMap.CycleExpiry):
			expiries := m.expiries()
			if len(expiries) > 0 {
				m.expiryIdx = (m.expiryIdx + 1) % len(expiries)
			}
			return m, nil

		case key.Matches(msg, DefaultKeyMap.Suggest):
			return m, m.suggestCmd()

		case key.Matches(msg, DefaultKeyMap.ToggleFlag):
			return m, m.toggleFlagCmd()
		}
	}

	return m, nil
}

// View renders the signal desk.
func (m SignalDeskModel) View() string {
	var sections []string

	sections = append(sections, HeaderStyle.Render("  Signal Desk"))
	sections = append(sections, "")

	flag := FlagOffStyle.Render("OFF")
	if m.flagOn {
		flag = FlagOnStyle.Render("ON")
	}
	sections = append(sections, fmt.Sprintf("  Auto-suggestions: %s", flag))
	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", maxWidth(m.width-2))))

	sections = append(sections, m.renderPicker())
	sections = append(sections, "")

	if m.lastSignal != nil {
		body := lipgloss.JoinVertical(lipgloss.Left,
			HeaderStyle.Render(" Last generated "),
			" "+FormatSignal(*m.lastSignal),
			" "+RenderConfidenceBar(m.lastSignal.Confidence, 30),
		)
		sections = append(sections, BorderStyle.Render(body))
	} else {
		sections = append(sections, SubtextStyle.Render("  No signal generated yet"))
	}

	sections = append(sections, "")
	sections = append(sections, SubtextStyle.Render("  [s] pair  [e] expiry  [g] generate  [t] toggle auto-suggestions"))

	return strings.Join(sections, "\n")
}

// SetSize updates the model dimensions.
func (m *SignalDeskModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Selection returns the picked instrument and expiry (for testing).
func (m SignalDeskModel) Selection() (string, string) {
	if len(m.instruments) == 0 {
		return "", ""
	}
	inst := m.instruments[m.pairIdx]
	expiries := m.expiries()
	if len(expiries) == 0 {
		return inst.ID, ""
	}
	return inst.ID, expiries[m.expiryIdx]
}

// LastSignal returns the most recent generated signal (for testing).
func (m SignalDeskModel) LastSignal() *domain.Signal { return m.lastSignal }

// FlagOn returns the displayed flag state (for testing).
func (m SignalDeskModel) FlagOn() bool { return m.flagOn }

func (m SignalDeskModel) renderPicker() string {
	if len(m.instruments) == 0 {
		return SubtextStyle.Render("  Catalog unavailable")
	}

	inst := m.instruments[m.pairIdx]
	expiries := m.expiries()
	expiry := ""
	if len(expiries) > 0 {
		expiry = expiries[m.expiryIdx]
	}

	return fmt.Sprintf("  Pair: %s   Market: %s   Expiry: %s",
		ActiveTabStyle.Render(inst.ID),
		SubtextStyle.Render(string(inst.Category)),
		ActiveTabStyle.Render(expiry),
	)
}

func (m SignalDeskModel) expiries() []string {
	if len(m.instruments) == 0 {
		return nil
	}
	return domain.DurationsFor(m.instruments[m.pairIdx])
}

func (m SignalDeskModel) suggestCmd() tea.Cmd {
	inst, expiry := m.Selection()
	return func() tea.Msg {
		if m.services.Suggester == nil || inst == "" {
			return nil
		}
		return suggestionMsg(m.services.Suggester.Generate(inst, expiry))
	}
}

func (m SignalDeskModel) toggleFlagCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Flags == nil {
			return nil
		}
		next := !m.services.Flags.AutoSuggestions()
		m.services.Flags.SetAutoSuggestions(next)
		return flagChangedMsg(next)
	}
}

func maxWidth(w int) int {
	if w < 10 {
		return 10
	}
	return w
}
