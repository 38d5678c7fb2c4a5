package verify

import (
	"sync"

	"pocket-signal-pro/internal/domain"
)

const subscriberBuffer = 16

// Broker fans verification events out to in-process subscribers (the admin
// websocket stream, tests). Publishing never blocks: a subscriber that falls
// behind drops events rather than stalling the workflow.
type Broker struct {
	mu   sync.Mutex
	subs map[int]chan domain.VerificationEvent
	next int
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan domain.VerificationEvent)}
}

// Subscribe returns a receive channel and a cancel function. Cancel closes
// the channel.
func (b *Broker) Subscribe() (<-chan domain.VerificationEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan domain.VerificationEvent, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (b *Broker) Publish(ev domain.VerificationEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
