package ports

import (
	"context"
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	"github.com/shopspring/decimal"
)

// Line is one cart line handed over for commit. Price is the snapshot the
// cart captured when the dish was selected.
type Line struct {
	DishID   int64
	Quantity int
	Price    decimal.Decimal
}

// FinalizeInput commits a cart. OfficeID falls back to the user's office.
type FinalizeInput struct {
	UserID   int64
	OfficeID *int64
	CafeID   *int64
	Date     time.Time
	Lines    []Line
}

type ChangeStatusInput struct {
	OrderID int64
	Status  domain.Status
	ActorID int64
}

type AddItemInput struct {
	OrderID  int64
	UserID   int64
	DishID   int64
	Quantity int
}

type RemoveItemInput struct {
	OrderID int64
	UserID  int64
	ItemID  int64
}

// Service exposes order use cases to adapters.
type Service interface {
	Finalize(ctx context.Context, input FinalizeInput) (*domain.Order, error)
	ChangeStatus(ctx context.Context, input ChangeStatusInput) (*domain.Order, error)
	Cancel(ctx context.Context, orderID, userID int64) (*domain.Order, error)
	AddItem(ctx context.Context, input AddItemInput) (*domain.Order, error)
	RemoveItem(ctx context.Context, input RemoveItemInput) (*domain.Order, error)
	Get(ctx context.Context, orderID int64) (*domain.Order, error)
	ListForUser(ctx context.Context, userID int64, filter Filter) ([]*domain.Order, error)
	List(ctx context.Context, filter Filter) ([]*domain.Order, error)
}
