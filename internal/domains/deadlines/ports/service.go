package ports

import (
	"context"
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
)

// Policy answers whether a date is still open for orders and cancellations.
type Policy interface {
	Resolve(ctx context.Context, date time.Time, scope domain.Scope) (*domain.Deadline, error)
	CanOrder(ctx context.Context, date time.Time, scope domain.Scope) (bool, error)
	CanCancel(ctx context.Context, date time.Time, scope domain.Scope) (bool, error)
	CheckOrder(ctx context.Context, date time.Time, scope domain.Scope) error
	CheckCancel(ctx context.Context, date time.Time, scope domain.Scope) error
}

// UpdateInput carries optional changes to an existing deadline.
type UpdateInput struct {
	ID     int64
	Cutoff *time.Time
	Active *bool
}

// Service exposes deadline administration alongside the policy.
type Service interface {
	Policy
	Create(ctx context.Context, date, cutoff time.Time, scope domain.Scope) (*domain.Deadline, error)
	Update(ctx context.Context, input UpdateInput) (*domain.Deadline, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, activeOnly bool) ([]*domain.Deadline, error)
}
