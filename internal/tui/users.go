package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pocket-signal-pro/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// User roster message types.
type usersMsg []domain.UserRecord
type usersErrMsg struct{ err error }
type verifyResultMsg struct {
	user    domain.UserRecord
	changed bool
}
type rosterTickMsg time.Time

// UsersModel is the Bubble Tea model for the user roster screen.
type UsersModel struct {
	services     Services
	users        []domain.UserRecord
	cursor       int
	scrollOffset int
	status       string
	loading      bool
	err          error
	width        int
	height       int
}

// NewUsersModel creates a new roster model.
func NewUsersModel(svc Services) UsersModel {
	return UsersModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial roster fetch and refresh tick.
func (m UsersModel) Init() tea.Cmd {
	return tea.Batch(m.fetchUsersCmd(), m.tickCmd())
}

// Update handles incoming messages.
func (m UsersModel) Update(msg tea.Msg) (UsersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case usersMsg:
		m.users = []domain.UserRecord(msg)
		m.loading = false
		m.err = nil
		if m.cursor >= len(m.users) {
			m.cursor = len(m.users) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case usersErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case verifyResultMsg:
		if msg.changed {
			m.status = fmt.Sprintf("Verified %s (%d)", msg.user.DisplayName, msg.user.ID)
		} else {
			m.status = fmt.Sprintf("No change for %d", msg.user.ID)
		}
		return m, m.fetchUsersCmd()

	case rosterTickMsg:
		return m, tea.Batch(m.fetchUsersCmd(), m.tickCmd())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.fetchUsersCmd()

		case key.Matches(msg, DefaultKeyMap.Verify):
			if m.cursor < len(m.users) {
				target := m.users[m.cursor]
				if target.State == domain.StatePending {
					return m, m.verifyCmd(target.ID)
				}
				m.status = fmt.Sprintf("%d is %s, nothing to verify", target.ID, target.State)
			}
			return m, nil

		case msg.String() == "j" || msg.String() == "down":
			if m.cursor < len(m.users)-1 {
				m.cursor++
			}
			if m.cursor >= m.scrollOffset+m.visibleRows() {
				m.scrollOffset++
			}
			return m, nil

		case msg.String() == "k" || msg.String() == "up":
			if m.cursor > 0 {
				m.cursor--
			}
			if m.cursor < m.scrollOffset {
				m.scrollOffset--
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the roster.
func (m UsersModel) View() string {
	var sections []string

	sections = append(sections, HeaderStyle.Render("  User Roster"))
	sections = append(sections, "  "+RenderStateSummary(m.users))
	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", max(m.width-2, 10))))

	if m.loading && len(m.users) == 0 {
		sections = append(sections, SubtextStyle.Render("  Loading users..."))
		return strings.Join(sections, "\n")
	}

	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	}

	if len(m.users) == 0 {
		sections = append(sections, SubtextStyle.Render("  Nobody has talked to the bot yet"))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, SubtextStyle.Render(
		fmt.Sprintf("  %-12s %-18s %-8s  %-12s %s", "Chat ID", "Name", "State", "Reference", "First seen"),
	))

	end := m.scrollOffset + m.visibleRows()
	if end > len(m.users) {
		end = len(m.users)
	}
	for i := m.scrollOffset; i < end; i++ {
		line := "  " + FormatUser(m.users[i])
		if i == m.cursor {
			line = SelectedStyle.Render("> " + FormatUser(m.users[i]))
		}
		sections = append(sections, line)
	}

	if len(m.users) > m.visibleRows() {
		sections = append(sections, SubtextStyle.Render(
			fmt.Sprintf("  Showing %d-%d of %d (j/k to move)", m.scrollOffset+1, end, len(m.users)),
		))
	}

	if m.status != "" {
		sections = append(sections, "")
		sections = append(sections, StateVerifiedStyle.Render("  "+m.status))
	}

	sections = append(sections, "")
	sections = append(sections, SubtextStyle.Render("  [j/k] move  [v] verify selected  [R] refresh"))

	return strings.Join(sections, "\n")
}

// SetSize updates the model dimensions.
func (m *UsersModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Users returns the loaded roster (for testing).
func (m UsersModel) Users() []domain.UserRecord { return m.users }

// Cursor returns the selected row index (for testing).
func (m UsersModel) Cursor() int { return m.cursor }

func (m UsersModel) fetchUsersCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Users == nil {
			return usersErrMsg{err: fmt.Errorf("user store not available")}
		}
		return usersMsg(m.services.Users.List())
	}
}

func (m UsersModel) verifyCmd(targetID int64) tea.Cmd {
	return func() tea.Msg {
		if m.services.Promoter == nil {
			return usersErrMsg{err: fmt.Errorf("verification not available")}
		}
		user, changed := m.services.Promoter.Promote(context.Background(), targetID)
		return verifyResultMsg{user: user, changed: changed}
	}
}

func (m UsersModel) tickCmd() tea.Cmd {
	return tea.Tick(15*time.Second, func(t time.Time) tea.Msg {
		return rosterTickMsg(t)
	})
}

func (m UsersModel) visibleRows() int {
	// Account for header, summary, table header, help footer
	available := m.height - 9
	if available < 5 {
		return 5
	}
	return available
}
