package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
	"github.com/Apurer/canteen-orders/internal/domains/deadlines/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory deadline store.
type Repository struct {
	mu        sync.RWMutex
	deadlines map[int64]*domain.Deadline
	nextID    int64
}

func NewRepository() *Repository {
	return &Repository{deadlines: map[int64]*domain.Deadline{}}
}

func (r *Repository) Save(_ context.Context, deadline *domain.Deadline) (*domain.Deadline, error) {
	if deadline == nil {
		return nil, errors.New("deadline is nil")
	}
	clone := *deadline
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
	r.deadlines[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Deadline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deadlines[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.deadlines[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.deadlines, id)
	return nil
}

func (r *Repository) ListForDate(_ context.Context, date time.Time) ([]*domain.Deadline, error) {
	date = domain.DateOnly(date)
	return r.filter(func(d *domain.Deadline) bool { return d.Date.Equal(date) }), nil
}

func (r *Repository) List(_ context.Context, activeOnly bool) ([]*domain.Deadline, error) {
	return r.filter(func(d *domain.Deadline) bool { return !activeOnly || d.Active }), nil
}

func (r *Repository) filter(keep func(*domain.Deadline) bool) []*domain.Deadline {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Deadline, 0)
	for _, d := range r.deadlines {
		if !keep(d) {
			continue
		}
		clone := *d
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		return list[i].Cutoff.After(list[j].Cutoff)
	})
	return list
}
