package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/canteen-orders/internal/domains/cart/domain"
	"github.com/Apurer/canteen-orders/internal/domains/cart/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore persists carts in PostgreSQL so they survive restarts.
// Expired rows are invisible to Load and removed by PurgeExpired.
type SessionStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewSessionStore wires a PostgreSQL-backed cart store. Caller manages DB lifecycle.
func NewSessionStore(db *gorm.DB, ttl time.Duration) *SessionStore {
	return &SessionStore{db: db, ttl: ttl, now: time.Now}
}

type cartSessionRecord struct {
	SessionID string    `gorm:"primaryKey;column:session_id;size:128"`
	Payload   []byte    `gorm:"column:payload;type:jsonb"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartSessionRecord) TableName() string { return "cart_sessions" }

func (s *SessionStore) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record cartSessionRecord
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND expires_at > ?", sessionID, s.now()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var cart domain.Cart
	if err := json.Unmarshal(record.Payload, &cart); err != nil {
		return nil, err
	}
	if cart.Lines == nil {
		cart.Lines = []domain.Line{}
	}
	return &cart, nil
}

// Save upserts the cart and pushes its expiry out by the TTL.
func (s *SessionStore) Save(ctx context.Context, cart *domain.Cart) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if cart == nil || cart.SessionID == "" {
		return domain.ErrMissingSession
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	now := s.now()
	record := cartSessionRecord{
		SessionID: cart.SessionID,
		Payload:   payload,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"payload":    record.Payload,
				"expires_at": record.ExpiresAt,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&cartSessionRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// PurgeExpired deletes carts whose TTL has passed and returns how many went.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&cartSessionRecord{})
	return result.RowsAffected, result.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres cart session store not configured")
	}
	return nil
}
