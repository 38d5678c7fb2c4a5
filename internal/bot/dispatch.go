package bot

import (
	"context"
	"errors"
	"log"
	"sync"

	tele "gopkg.in/telebot.v3"
)

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type userDirectory interface {
	IDs() []int64
}

// Dispatcher pushes outbound messages through the bot. It serves two jobs:
// single-recipient notices (verification updates to admins and users) and
// broadcasts to every known user. It is created before the bot exists and
// bound to it once the bot starts, so it can be wired into the router and
// the verification workflow first.
type Dispatcher struct {
	users userDirectory

	mu     sync.RWMutex
	sender messageSender
}

func NewDispatcher(users userDirectory) *Dispatcher {
	return &Dispatcher{users: users}
}

// Bind attaches the live bot. Until bound, notifications fail softly.
func (d *Dispatcher) Bind(sender messageSender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sender = sender
}

func (d *Dispatcher) currentSender() messageSender {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sender
}

// Notify sends one text to one chat.
func (d *Dispatcher) Notify(ctx context.Context, chatID int64, text string) error {
	_ = ctx
	sender := d.currentSender()
	if sender == nil {
		return errors.New("bot not started")
	}
	_, err := sender.Send(&tele.Chat{ID: chatID}, text)
	return err
}

// Broadcast sends one text to every known user, collecting the chat ids that
// could not be reached instead of stopping at the first failure.
func (d *Dispatcher) Broadcast(ctx context.Context, text string) (int, []int64) {
	_ = ctx
	sender := d.currentSender()
	if sender == nil {
		log.Println("broadcast skipped: bot not started")
		return 0, nil
	}

	sent := 0
	var failed []int64
	for _, chatID := range d.users.IDs() {
		if _, err := sender.Send(&tele.Chat{ID: chatID}, text); err != nil {
			log.Printf("broadcast to chat %d failed: %v", chatID, err)
			failed = append(failed, chatID)
			continue
		}
		sent++
	}
	return sent, failed
}
