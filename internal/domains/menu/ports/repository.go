package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/menu/domain"
)

var (
	ErrNotFound     = errors.New("menu entry not found")
	ErrDishNotFound = errors.New("dish not found")
	ErrEntryExists  = errors.New("menu entry already exists")
)

// LedgerTx is the view of the inventory table available inside a transaction.
// LockEntry must hold a row lock on the entry until the transaction ends.
type LedgerTx interface {
	LockEntry(ctx context.Context, key domain.EntryKey) (*domain.MenuEntry, error)
	SetAvailable(ctx context.Context, key domain.EntryKey, available int) error
	InsertEntry(ctx context.Context, entry *domain.MenuEntry) (*domain.MenuEntry, error)
}

// Repository reads inventory rows and opens ledger transactions.
type Repository interface {
	GetEntry(ctx context.Context, key domain.EntryKey) (*domain.MenuEntry, error)
	ListEntries(ctx context.Context, scope domain.Scope, date time.Time) ([]*domain.MenuEntry, error)
	DeleteEntry(ctx context.Context, key domain.EntryKey) error
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// DishRepository persists the dish catalogue.
type DishRepository interface {
	Save(ctx context.Context, dish *domain.Dish) (*domain.Dish, error)
	GetByID(ctx context.Context, id int64) (*domain.Dish, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*domain.Dish, error)
	List(ctx context.Context) ([]*domain.Dish, error)
}
