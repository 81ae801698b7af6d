package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/canteen-orders/internal/domains/cart/domain"
	"github.com/Apurer/canteen-orders/internal/domains/cart/ports"
)

const keyPrefix = "cart:session:"

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps carts as JSON values in Redis. Each save refreshes the
// TTL, so a cart expires after ttl of inactivity.
type SessionStore struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

func NewSessionStore(rdb goredis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Key(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	raw, err := s.rdb.Get(ctx, s.Key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, err
	}
	if cart.Lines == nil {
		cart.Lines = []domain.Line{}
	}
	return &cart, nil
}

func (s *SessionStore) Save(ctx context.Context, cart *domain.Cart) error {
	if cart == nil || cart.SessionID == "" {
		return domain.ErrMissingSession
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.Key(cart.SessionID), raw, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	deleted, err := s.rdb.Del(ctx, s.Key(sessionID)).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ports.ErrNotFound
	}
	return nil
}
