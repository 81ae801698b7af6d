package ports

import (
	"context"
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/menu/domain"
)

// StockLine sets the portions of one dish when a menu is loaded.
type StockLine struct {
	DishID   int64
	Quantity int
}

// Service exposes menu use cases to adapters.
type Service interface {
	GetMenu(ctx context.Context, scope domain.Scope, date time.Time) ([]domain.MenuItem, error)
	LoadMenu(ctx context.Context, scope domain.Scope, date time.Time, lines []StockLine) ([]*domain.MenuEntry, error)
	RemoveEntry(ctx context.Context, key domain.EntryKey) error
	Available(ctx context.Context, key domain.EntryKey) (int, error)
	SaveDish(ctx context.Context, dish *domain.Dish) (*domain.Dish, error)
	GetDish(ctx context.Context, id int64) (*domain.Dish, error)
	ListDishes(ctx context.Context) ([]*domain.Dish, error)
}
