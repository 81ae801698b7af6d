package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	menumemory "github.com/Apurer/canteen-orders/internal/domains/menu/adapters/memory"
	menuports "github.com/Apurer/canteen-orders/internal/domains/menu/ports"
	"github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	"github.com/Apurer/canteen-orders/internal/domains/orders/ports"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.Tx         = (*tx)(nil)
)

// Repository is an in-memory order persistence adapter sharing transactions
// with the in-memory inventory table. Locks are taken orders first, then menu.
type Repository struct {
	mu         sync.RWMutex
	orders     map[int64]*domain.Order
	nextID     int64
	nextItemID int64
	menu       *menumemory.Repository
}

func NewRepository(menu *menumemory.Repository) *Repository {
	return &Repository{orders: map[int64]*domain.Order{}, menu: menu}
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) List(_ context.Context, filter ports.Filter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if matches(order, filter) {
			list = append(list, order.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].OrderDate.Equal(list[j].OrderDate) {
			return list[i].OrderDate.After(list[j].OrderDate)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &tx{repo: r, staged: map[int64]*domain.Order{}, nextID: r.nextID, nextItemID: r.nextItemID}
	if r.menu != nil {
		t.menu = r.menu.Begin()
		defer t.menu.Rollback()
	}
	if err := fn(ctx, t); err != nil {
		return err
	}
	for id, order := range t.staged {
		r.orders[id] = order
	}
	r.nextID, r.nextItemID = t.nextID, t.nextItemID
	if t.menu != nil {
		t.menu.Commit()
	}
	return nil
}

type tx struct {
	repo       *Repository
	menu       *menumemory.Tx
	staged     map[int64]*domain.Order
	nextID     int64
	nextItemID int64
}

func (t *tx) Ledger() menuports.LedgerTx {
	if t.menu == nil {
		return nil
	}
	return t.menu
}

func (t *tx) GetForUpdate(_ context.Context, id int64) (*domain.Order, error) {
	order, ok := t.lookup(id)
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (t *tx) HasPending(_ context.Context, userID int64, date time.Time, excludeID int64) (bool, error) {
	for _, order := range t.view() {
		if order.ID != excludeID && order.UserID == userID &&
			order.Status == domain.StatusPending && order.OrderDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if order.Status == domain.StatusPending {
		pending, _ := t.HasPending(ctx, order.UserID, order.OrderDate, 0)
		if pending {
			return nil, domain.ErrDuplicateOrder
		}
	}
	clone := order.Clone()
	t.nextID++
	clone.ID = t.nextID
	return t.store(clone)
}

func (t *tx) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if _, ok := t.lookup(order.ID); !ok {
		return nil, ports.ErrNotFound
	}
	return t.store(order.Clone())
}

func (t *tx) store(order *domain.Order) (*domain.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	for i := range order.Items {
		if order.Items[i].ID == 0 {
			t.nextItemID++
			order.Items[i].ID = t.nextItemID
		}
	}
	t.staged[order.ID] = order
	return order.Clone(), nil
}

func (t *tx) lookup(id int64) (*domain.Order, bool) {
	if order, ok := t.staged[id]; ok {
		return order, true
	}
	order, ok := t.repo.orders[id]
	return order, ok
}

func (t *tx) view() map[int64]*domain.Order {
	merged := make(map[int64]*domain.Order, len(t.repo.orders)+len(t.staged))
	for id, order := range t.repo.orders {
		merged[id] = order
	}
	for id, order := range t.staged {
		merged[id] = order
	}
	return merged
}

func matches(order *domain.Order, filter ports.Filter) bool {
	if filter.UserID != nil && order.UserID != *filter.UserID {
		return false
	}
	if filter.Date != nil && !order.OrderDate.Equal(*filter.Date) {
		return false
	}
	if filter.Status != nil && order.Status != *filter.Status {
		return false
	}
	if len(filter.DishIDs) == 0 {
		return true
	}
	for _, item := range order.Items {
		for _, dishID := range filter.DishIDs {
			if item.DishID == dishID {
				return true
			}
		}
	}
	return false
}
