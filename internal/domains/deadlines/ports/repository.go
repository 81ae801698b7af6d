package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
)

var ErrNotFound = errors.New("deadline not found")

// Repository persists deadlines.
type Repository interface {
	Save(ctx context.Context, deadline *domain.Deadline) (*domain.Deadline, error)
	GetByID(ctx context.Context, id int64) (*domain.Deadline, error)
	Delete(ctx context.Context, id int64) error
	ListForDate(ctx context.Context, date time.Time) ([]*domain.Deadline, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Deadline, error)
}
