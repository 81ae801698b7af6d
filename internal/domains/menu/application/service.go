package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	"github.com/Apurer/canteen-orders/internal/domains/menu/ports"
)

// Service orchestrates menu and catalogue use cases.
type Service struct {
	repo   ports.Repository
	dishes ports.DishRepository
	ledger *Ledger
}

func NewService(repo ports.Repository, dishes ports.DishRepository) *Service {
	return &Service{repo: repo, dishes: dishes, ledger: NewLedger(repo)}
}

// Ledger exposes the inventory ledger backing this service.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// GetMenu lists offered dishes for a scope and date with their remaining portions,
// grouped by category and then sorted by name.
func (s *Service) GetMenu(ctx context.Context, scope domain.Scope, date time.Time) ([]domain.MenuItem, error) {
	if date.IsZero() {
		return nil, mapError(domain.ErrMissingDate)
	}
	entries, err := s.repo.ListEntries(ctx, scope, domain.DateOnly(date))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []domain.MenuItem{}, nil
	}
	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.Key.DishID)
	}
	dishes, err := s.dishes.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.Dish, len(dishes))
	for _, dish := range dishes {
		byID[dish.ID] = dish
	}
	items := make([]domain.MenuItem, 0, len(entries))
	for _, entry := range entries {
		dish, ok := byID[entry.Key.DishID]
		if !ok || !dish.Available {
			continue
		}
		items = append(items, domain.MenuItem{Dish: *dish, Available: entry.Available})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Dish.Category != items[j].Dish.Category {
			return items[i].Dish.Category < items[j].Dish.Category
		}
		return items[i].Dish.Name < items[j].Dish.Name
	})
	return items, nil
}

// LoadMenu stocks the given dishes for a date, overwriting existing entries.
// Every line is checked before anything is written and the writes share one
// transaction, so a bad line leaves the menu as it was.
func (s *Service) LoadMenu(ctx context.Context, scope domain.Scope, date time.Time, lines []ports.StockLine) ([]*domain.MenuEntry, error) {
	if date.IsZero() {
		return nil, mapError(domain.ErrMissingDate)
	}
	entries := make([]*domain.MenuEntry, 0, len(lines))
	for _, line := range lines {
		if _, err := s.dishes.GetByID(ctx, line.DishID); err != nil {
			return nil, err
		}
		entry, err := domain.NewMenuEntry(domain.NewEntryKey(scope, line.DishID, date), line.Quantity)
		if err != nil {
			return nil, mapError(err)
		}
		entries = append(entries, entry)
	}
	var result []*domain.MenuEntry
	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		var err error
		result, err = s.ledger.StockAll(ctx, tx, entries)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) RemoveEntry(ctx context.Context, key domain.EntryKey) error {
	return s.repo.DeleteEntry(ctx, domain.NewEntryKey(key.Scope, key.DishID, key.Date))
}

func (s *Service) Available(ctx context.Context, key domain.EntryKey) (int, error) {
	return s.ledger.Available(ctx, key)
}

func (s *Service) SaveDish(ctx context.Context, dish *domain.Dish) (*domain.Dish, error) {
	if dish == nil {
		return nil, errors.New("dish is nil")
	}
	if err := dish.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.dishes.Save(ctx, dish)
}

func (s *Service) GetDish(ctx context.Context, id int64) (*domain.Dish, error) {
	return s.dishes.GetByID(ctx, id)
}

func (s *Service) ListDishes(ctx context.Context) ([]*domain.Dish, error) {
	return s.dishes.List(ctx)
}

var _ ports.Service = (*Service)(nil)
