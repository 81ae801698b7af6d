package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	"github.com/Apurer/canteen-orders/internal/domains/menu/ports"
)

var _ ports.DishRepository = (*DishRepository)(nil)

// DishRepository is an in-memory dish catalogue.
type DishRepository struct {
	mu     sync.RWMutex
	dishes map[int64]*domain.Dish
	nextID int64
}

func NewDishRepository() *DishRepository {
	return &DishRepository{dishes: map[int64]*domain.Dish{}}
}

func (r *DishRepository) Save(_ context.Context, dish *domain.Dish) (*domain.Dish, error) {
	if dish == nil {
		return nil, errors.New("dish is nil")
	}
	clone := *dish
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.dishes[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *DishRepository) GetByID(_ context.Context, id int64) (*domain.Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dish, ok := r.dishes[id]
	if !ok {
		return nil, ports.ErrDishNotFound
	}
	clone := *dish
	return &clone, nil
}

func (r *DishRepository) ListByIDs(_ context.Context, ids []int64) ([]*domain.Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Dish, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if dish, ok := r.dishes[id]; ok {
			clone := *dish
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (r *DishRepository) List(_ context.Context) ([]*domain.Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Dish, 0, len(r.dishes))
	for _, dish := range r.dishes {
		clone := *dish
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
