package outbox

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store persists pending events. Append is called inside the caller's
// transaction so an event row exists exactly when its transition does.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListPending returns up to limit undispatched events in append order.
	ListPending(ctx context.Context, limit int) ([]Event, error)
	MarkDispatched(ctx context.Context, ids []uuid.UUID) error
}

// InMemoryStore buffers events for development wiring and tests.
type InMemoryStore struct {
	mu         sync.Mutex
	events     []Event
	dispatched map[uuid.UUID]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{dispatched: make(map[uuid.UUID]bool)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListPending(_ context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if s.dispatched[e.ID] {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkDispatched(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, eventID := range ids {
		s.dispatched[eventID] = true
	}
	return nil
}

// All returns every appended event, for tests.
func (s *InMemoryStore) All() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
