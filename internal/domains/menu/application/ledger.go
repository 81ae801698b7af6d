package application

import (
	"context"
	"errors"
	"sort"

	"github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	"github.com/Apurer/canteen-orders/internal/domains/menu/ports"
)

// Ledger is the only writer of available quantities. Every mutation reads the
// row under lock and applies a bounded change in the same transaction.
type Ledger struct {
	repo ports.Repository
}

func NewLedger(repo ports.Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Available reports the portions left; a missing entry counts as zero.
func (l *Ledger) Available(ctx context.Context, key domain.EntryKey) (int, error) {
	key = domain.NewEntryKey(key.Scope, key.DishID, key.Date)
	entry, err := l.repo.GetEntry(ctx, key)
	if errors.Is(err, ports.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entry.Available, nil
}

// Reserve takes quantity units from a single entry in its own transaction.
func (l *Ledger) Reserve(ctx context.Context, key domain.EntryKey, quantity int) error {
	return l.repo.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		return l.ReserveAll(ctx, tx, []domain.Reservation{{Key: key, Quantity: quantity}})
	})
}

// Release returns quantity units to a single entry in its own transaction.
func (l *Ledger) Release(ctx context.Context, key domain.EntryKey, quantity int) error {
	return l.repo.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		return l.ReleaseAll(ctx, tx, []domain.Reservation{{Key: key, Quantity: quantity}})
	})
}

// Stock sets the absolute quantity of an entry, creating it when absent.
func (l *Ledger) Stock(ctx context.Context, key domain.EntryKey, quantity int) (*domain.MenuEntry, error) {
	entry, err := domain.NewMenuEntry(key, quantity)
	if err != nil {
		return nil, mapError(err)
	}
	var result []*domain.MenuEntry
	err = l.repo.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		result, err = l.StockAll(ctx, tx, []*domain.MenuEntry{entry})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result[0], nil
}

// StockAll sets every entry to its absolute quantity inside the caller's
// transaction. Rows are locked in key order; results follow the input order.
// When a key repeats, the later entry wins.
func (l *Ledger) StockAll(ctx context.Context, tx ports.LedgerTx, entries []*domain.MenuEntry) ([]*domain.MenuEntry, error) {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return entries[order[a]].Key.Less(entries[order[b]].Key) })

	result := make([]*domain.MenuEntry, len(entries))
	for _, i := range order {
		entry := entries[i]
		current, err := tx.LockEntry(ctx, entry.Key)
		if errors.Is(err, ports.ErrNotFound) {
			if result[i], err = tx.InsertEntry(ctx, entry); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := tx.SetAvailable(ctx, entry.Key, entry.Available); err != nil {
			return nil, err
		}
		current.Available = entry.Available
		result[i] = current
	}
	return result, nil
}

// ReserveAll reserves every line inside the caller's transaction. Either all
// lines fit and are decremented, or nothing is written and the returned
// *domain.InsufficientAvailabilityError lists each dish that fell short.
func (l *Ledger) ReserveAll(ctx context.Context, tx ports.LedgerTx, reservations []domain.Reservation) error {
	merged, err := mergeReservations(reservations)
	if err != nil {
		return err
	}
	entries := make([]*domain.MenuEntry, len(merged))
	var shortfalls []domain.Shortfall
	for i, r := range merged {
		entry, err := tx.LockEntry(ctx, r.Key)
		if errors.Is(err, ports.ErrNotFound) {
			shortfalls = append(shortfalls, domain.Shortfall{DishID: r.Key.DishID, Requested: r.Quantity})
			continue
		}
		if err != nil {
			return err
		}
		if entry.Available < r.Quantity {
			shortfalls = append(shortfalls, domain.Shortfall{DishID: r.Key.DishID, Requested: r.Quantity, Available: entry.Available})
			continue
		}
		entries[i] = entry
	}
	if len(shortfalls) > 0 {
		return &domain.InsufficientAvailabilityError{Shortfalls: shortfalls}
	}
	for i, r := range merged {
		if err := tx.SetAvailable(ctx, r.Key, entries[i].Available-r.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseAll returns every line to the ledger inside the caller's transaction.
// Entries removed by an administrator in the meantime are skipped.
func (l *Ledger) ReleaseAll(ctx context.Context, tx ports.LedgerTx, reservations []domain.Reservation) error {
	merged, err := mergeReservations(reservations)
	if err != nil {
		return err
	}
	for _, r := range merged {
		entry, err := tx.LockEntry(ctx, r.Key)
		if errors.Is(err, ports.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := tx.SetAvailable(ctx, r.Key, entry.Available+r.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// mergeReservations sums lines that hit the same entry and sorts the result
// into lock order.
func mergeReservations(reservations []domain.Reservation) ([]domain.Reservation, error) {
	totals := make(map[domain.EntryKey]int, len(reservations))
	for _, r := range reservations {
		key := domain.NewEntryKey(r.Key.Scope, r.Key.DishID, r.Key.Date)
		if err := key.Validate(); err != nil {
			return nil, mapError(err)
		}
		if r.Quantity <= 0 {
			return nil, mapError(domain.ErrInvalidQuantity)
		}
		totals[key] += r.Quantity
	}
	merged := make([]domain.Reservation, 0, len(totals))
	for key, qty := range totals {
		merged = append(merged, domain.Reservation{Key: key, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Key.Less(merged[j].Key) })
	return merged, nil
}
