package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/cart/domain"
	"github.com/Apurer/canteen-orders/internal/domains/cart/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

type entry struct {
	cart      *domain.Cart
	expiresAt time.Time
}

// SessionStore keeps carts in process memory. Expired carts are dropped lazily
// on access and by Purge.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionStore builds a store; a non-positive ttl keeps carts forever.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{entries: map[string]entry{}, ttl: ttl, now: time.Now}
}

func (s *SessionStore) Load(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	if s.expired(e) {
		s.mu.Lock()
		delete(s.entries, sessionID)
		s.mu.Unlock()
		return nil, ports.ErrNotFound
	}
	return e.cart.Clone(), nil
}

func (s *SessionStore) Save(_ context.Context, cart *domain.Cart) error {
	if cart == nil || cart.SessionID == "" {
		return domain.ErrMissingSession
	}
	e := entry{cart: cart.Clone()}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[cart.SessionID] = e
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[sessionID]; !ok {
		return ports.ErrNotFound
	}
	delete(s.entries, sessionID)
	return nil
}

// Purge removes expired carts and reports how many were dropped.
func (s *SessionStore) Purge(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			purged++
		}
	}
	return purged, nil
}

func (s *SessionStore) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
