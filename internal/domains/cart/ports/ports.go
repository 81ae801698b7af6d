package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/canteen-orders/internal/domains/cart/domain"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	orderdomain "github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	orderports "github.com/Apurer/canteen-orders/internal/domains/orders/ports"
)

var ErrNotFound = errors.New("cart session not found")

// SessionStore keeps carts between chat interactions. Entries expire after
// the store's TTL; an expired cart is reported as ErrNotFound.
type SessionStore interface {
	Load(ctx context.Context, sessionID string, userID int64) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string, userID int64) error
}

// Inventory reads live availability for display-time checks.
type Inventory interface {
	Available(ctx context.Context, key menudomain.EntryKey) (int, error)
}

// DishCatalog resolves dish names and current prices.
type DishCatalog interface {
	GetDish(ctx context.Context, id int64) (*menudomain.Dish, error)
}

// Checkout commits a cart as an order.
type Checkout interface {
	Finalize(ctx context.Context, input orderports.FinalizeInput) (*orderdomain.Order, error)
}

// Service exposes cart use cases to adapters. Every call names its session
// and the calling user explicitly; no cart state lives outside the store. A
// session belongs to the user who first wrote it, and is reported as
// ErrNotFound to everyone else.
type Service interface {
	Get(ctx context.Context, sessionID string, userID int64) (*domain.Cart, error)
	SelectTarget(ctx context.Context, sessionID string, userID int64, date time.Time, cafeID, officeID *int64) (*domain.Cart, error)
	AddOrReplace(ctx context.Context, sessionID string, userID, dishID int64, quantity int) (*domain.Cart, error)
	Increment(ctx context.Context, sessionID string, userID, dishID int64, delta int) (*domain.Cart, error)
	Decrement(ctx context.Context, sessionID string, userID, dishID int64, delta int) (*domain.Cart, error)
	Remove(ctx context.Context, sessionID string, userID, dishID int64) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string, userID int64) error
	Totals(ctx context.Context, sessionID string, userID int64) (int, decimal.Decimal, error)
	Checkout(ctx context.Context, sessionID string, userID int64) (*orderdomain.Order, error)
}
