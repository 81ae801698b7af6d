package ports

import (
	"context"
	"errors"
	"time"

	menuports "github.com/Apurer/canteen-orders/internal/domains/menu/ports"
	"github.com/Apurer/canteen-orders/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Filter narrows order listings. Zero values match everything.
type Filter struct {
	UserID  *int64
	Date    *time.Time
	Status  *domain.Status
	DishIDs []int64
}

// Tx is a unit of work spanning orders and the inventory ledger. Every read
// through GetForUpdate holds the order row until the transaction ends.
type Tx interface {
	Ledger() menuports.LedgerTx
	GetForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	// HasPending reports whether userID holds a pending order on date other than excludeID.
	HasPending(ctx context.Context, userID int64, date time.Time, excludeID int64) (bool, error)
	// Create inserts the order and its items. A second pending order for the
	// same user and date fails with domain.ErrDuplicateOrder.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Save writes the header and replaces the item set.
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

// Repository persists orders.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, filter Filter) ([]*domain.Order, error)
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
