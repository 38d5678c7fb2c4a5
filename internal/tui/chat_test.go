package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(m ChatModel, text string) ChatModel {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestChatSendQuestion(t *testing.T) {
	m := NewChatModel(testServices())
	m.SetSize(100, 30)
	m.Focus()

	m = typeText(m, "how do I get verified?")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !m.IsWaiting() {
		t.Fatal("expected model to wait for a reply")
	}
	if m.MessageCount() != 1 {
		t.Fatalf("expected 1 message, got %d", m.MessageCount())
	}
	if cmd == nil {
		t.Fatal("expected ask command")
	}
}

func TestChatReceiveReply(t *testing.T) {
	m := NewChatModel(testServices())
	m.SetSize(100, 30)
	m.Focus()

	m = typeText(m, "hello")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(assistantReplyMsg("hi there"))

	if m.IsWaiting() {
		t.Fatal("expected waiting to clear after reply")
	}
	if m.MessageCount() != 2 {
		t.Fatalf("expected 2 messages, got %d", m.MessageCount())
	}
}

func TestChatEmptyInputIgnored(t *testing.T) {
	m := NewChatModel(testServices())
	m.SetSize(100, 30)
	m.Focus()

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.IsWaiting() {
		t.Fatal("expected no pending request for empty input")
	}
	if m.MessageCount() != 0 {
		t.Fatalf("expected no messages, got %d", m.MessageCount())
	}
	_ = cmd
}

func TestChatResetClearsConversation(t *testing.T) {
	svc := testServices()
	advisor := svc.Advisor.(*stubAdvisorQuerier)

	m := NewChatModel(svc)
	m.SetSize(100, 30)
	m.Focus()

	m = typeText(m, "hello")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(assistantReplyMsg("hi"))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.MessageCount() != 0 {
		t.Fatalf("expected empty conversation after reset, got %d messages", m.MessageCount())
	}
	if len(advisor.forgotten) != 1 {
		t.Fatalf("expected one forget call, got %d", len(advisor.forgotten))
	}
	if advisor.forgotten[0] != svc.ChatID() {
		t.Fatal("expected forget to target the session chat ID")
	}
}

func TestChatViewWithoutAdvisor(t *testing.T) {
	svc := testServices()
	svc.Advisor = nil

	m := NewChatModel(svc)
	m.SetSize(100, 30)

	view := m.View()
	if view == "" {
		t.Fatal("expected non-empty fallback view")
	}
}
