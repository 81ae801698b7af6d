package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/canteen-orders/internal/domains/users/domain"
	"github.com/Apurer/canteen-orders/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user store keyed by id with a chat id index.
type Repository struct {
	mu     sync.RWMutex
	users  map[int64]*domain.User
	byChat map[int64]int64
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{users: map[int64]*domain.User{}, byChat: map[int64]int64{}}
}

func (r *Repository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byChat[clone.ChatID]; ok && clone.ID == 0 {
		clone.ID = id
	}
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.users[clone.ID] = &clone
	r.byChat[clone.ChatID] = clone.ID
	result := clone
	return &result, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *Repository) GetByChatID(ctx context.Context, chatID int64) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byChat[chatID]
	r.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.User, 0)
	for _, user := range r.users {
		if user.Role != role {
			continue
		}
		clone := *user
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
