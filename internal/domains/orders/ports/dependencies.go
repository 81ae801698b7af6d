package ports

import (
	"context"
	"time"

	deadlinedomain "github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	menuports "github.com/Apurer/canteen-orders/internal/domains/menu/ports"
	usersdomain "github.com/Apurer/canteen-orders/internal/domains/users/domain"
)

// Ledger applies reservations inside an order transaction.
type Ledger interface {
	ReserveAll(ctx context.Context, tx menuports.LedgerTx, reservations []menudomain.Reservation) error
	ReleaseAll(ctx context.Context, tx menuports.LedgerTx, reservations []menudomain.Reservation) error
}

// DishCatalog supplies the live dish price for item additions.
type DishCatalog interface {
	GetDish(ctx context.Context, id int64) (*menudomain.Dish, error)
}

// DeadlinePolicy gates customer mutations by cutoff.
type DeadlinePolicy interface {
	CheckOrder(ctx context.Context, date time.Time, scope deadlinedomain.Scope) error
	CheckCancel(ctx context.Context, date time.Time, scope deadlinedomain.Scope) error
}

// UserDirectory resolves actors and notification recipients.
type UserDirectory interface {
	Get(ctx context.Context, id int64) (*usersdomain.User, error)
	ListManagers(ctx context.Context) ([]*usersdomain.User, error)
}

// Notifier delivers a message to a chat. Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, recipient int64, message string) error
}
