package ports

import (
	"context"
	"errors"

	"github.com/Apurer/canteen-orders/internal/domains/users/domain"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByChatID(ctx context.Context, chatID int64) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
}
