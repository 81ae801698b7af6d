package ports

import (
	"context"

	"github.com/Apurer/canteen-orders/internal/domains/users/domain"
)

// RegisterInput identifies a chat account on first contact.
type RegisterInput struct {
	ChatID   int64
	Username string
	FullName string
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByChatID(ctx context.Context, chatID int64) (*domain.User, error)
	ListManagers(ctx context.Context) ([]*domain.User, error)
	SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error)
	SetBlocked(ctx context.Context, id int64, blocked bool) (*domain.User, error)
	AssignOffice(ctx context.Context, id int64, officeID *int64) (*domain.User, error)
}
