package store

import (
	"context"
	"log"
	"sync"
	"time"

	"pocket-signal-pro/internal/domain"
)

// Mirror receives committed user records for out-of-process persistence. The
// in-memory registry stays authoritative; mirror failures are logged and
// never surfaced to callers.
type Mirror interface {
	SaveUser(ctx context.Context, user domain.UserRecord) error
}

type entry struct {
	mu   sync.Mutex
	user domain.UserRecord
}

// UserStore is the process-wide registry of caller records. Reads and writes
// for one id are serialized by a per-id lock so two rapid events from the
// same caller cannot interleave; distinct ids proceed concurrently.
type UserStore struct {
	mu     sync.RWMutex
	users  map[int64]*entry
	order  []int64
	mirror Mirror
	now    func() time.Time
}

func NewUserStore(mirror Mirror) *UserStore {
	return &UserStore{
		users:  make(map[int64]*entry),
		mirror: mirror,
		now:    time.Now,
	}
}

func (s *UserStore) entryFor(id int64) *entry {
	s.mu.RLock()
	e, ok := s.users[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.users[id]; ok {
		return e
	}
	e = &entry{user: domain.UserRecord{
		ID:          id,
		State:       domain.StateGuest,
		FirstSeenAt: s.now().UTC(),
	}}
	s.users[id] = e
	s.order = append(s.order, id)
	return e
}

// GetOrCreate returns the record for id, creating a guest record on miss.
func (s *UserStore) GetOrCreate(id int64) domain.UserRecord {
	e := s.entryFor(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.user
}

// Touch is GetOrCreate plus a best-effort display-name refresh, applied on
// every inbound event.
func (s *UserStore) Touch(ctx context.Context, id int64, displayName string) domain.UserRecord {
	e := s.entryFor(id)
	e.mu.Lock()
	changed := false
	if displayName != "" && e.user.DisplayName != displayName {
		e.user.DisplayName = displayName
		changed = true
	}
	user := e.user
	e.mu.Unlock()

	if changed {
		s.mirrorUser(ctx, user)
	}
	return user
}

func (s *UserStore) Get(id int64) (domain.UserRecord, bool) {
	s.mu.RLock()
	e, ok := s.users[id]
	s.mu.RUnlock()
	if !ok {
		return domain.UserRecord{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.user, true
}

// Update applies mutate under the per-id lock and returns the committed
// record. The mirror write happens after the lock is released so slow
// persistence can never block another event for the same caller.
func (s *UserStore) Update(ctx context.Context, id int64, mutate func(*domain.UserRecord)) domain.UserRecord {
	e := s.entryFor(id)
	e.mu.Lock()
	mutate(&e.user)
	e.user.ID = id
	user := e.user
	e.mu.Unlock()

	s.mirrorUser(ctx, user)
	return user
}

// AdvanceState moves id forward to next, refusing demotions. It reports
// whether the stored state changed.
func (s *UserStore) AdvanceState(ctx context.Context, id int64, next domain.VerificationState) (domain.UserRecord, bool) {
	e := s.entryFor(id)
	e.mu.Lock()
	changed := e.user.State.CanAdvanceTo(next)
	if changed {
		e.user.State = next
	}
	user := e.user
	e.mu.Unlock()

	if changed {
		s.mirrorUser(ctx, user)
	}
	return user, changed
}

// List returns all records in insertion order.
func (s *UserStore) List() []domain.UserRecord {
	s.mu.RLock()
	ids := make([]int64, len(s.order))
	copy(ids, s.order)
	s.mu.RUnlock()

	out := make([]domain.UserRecord, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.Get(id); ok {
			out = append(out, user)
		}
	}
	return out
}

// IDs returns every known caller id in insertion order.
func (s *UserStore) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}

// Seed loads previously persisted records, keeping their relative order.
// Existing in-memory records win.
func (s *UserStore) Seed(users []domain.UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range users {
		if _, ok := s.users[user.ID]; ok {
			continue
		}
		u := user
		if u.State == "" {
			u.State = domain.StateGuest
		}
		s.users[u.ID] = &entry{user: u}
		s.order = append(s.order, u.ID)
	}
}

func (s *UserStore) mirrorUser(ctx context.Context, user domain.UserRecord) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.SaveUser(ctx, user); err != nil {
		log.Printf("user mirror write failed for %d: %v", user.ID, err)
	}
}
