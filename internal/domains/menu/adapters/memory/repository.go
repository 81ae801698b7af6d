package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	"github.com/Apurer/canteen-orders/internal/domains/menu/ports"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.LedgerTx   = (*Tx)(nil)
)

// Repository is an in-memory inventory table. A transaction holds the write
// lock for its whole lifetime, so transactions are fully serialized.
type Repository struct {
	mu      sync.RWMutex
	entries map[domain.EntryKey]domain.MenuEntry
	nextID  int64
}

func NewRepository() *Repository {
	return &Repository{entries: map[domain.EntryKey]domain.MenuEntry{}}
}

func (r *Repository) GetEntry(_ context.Context, key domain.EntryKey) (*domain.MenuEntry, error) {
	key = normalize(key)
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &entry, nil
}

func (r *Repository) ListEntries(_ context.Context, scope domain.Scope, date time.Time) ([]*domain.MenuEntry, error) {
	date = domain.DateOnly(date)
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.MenuEntry, 0)
	for key, entry := range r.entries {
		if key.Scope != scope || !key.Date.Equal(date) {
			continue
		}
		clone := entry
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key.DishID < list[j].Key.DishID })
	return list, nil
}

func (r *Repository) DeleteEntry(_ context.Context, key domain.EntryKey) error {
	key = normalize(key)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; !ok {
		return ports.ErrNotFound
	}
	delete(r.entries, key)
	return nil
}

func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := r.Begin()
	defer tx.Rollback()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.Commit()
	return nil
}

// Begin opens a transaction. Callers must finish it with Commit or Rollback.
func (r *Repository) Begin() *Tx {
	r.mu.Lock()
	return &Tx{repo: r, staged: map[domain.EntryKey]domain.MenuEntry{}}
}

// Tx buffers writes until Commit.
type Tx struct {
	repo   *Repository
	staged map[domain.EntryKey]domain.MenuEntry
	closed bool
}

func (t *Tx) LockEntry(_ context.Context, key domain.EntryKey) (*domain.MenuEntry, error) {
	entry, ok := t.lookup(normalize(key))
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &entry, nil
}

func (t *Tx) SetAvailable(_ context.Context, key domain.EntryKey, available int) error {
	key = normalize(key)
	entry, ok := t.lookup(key)
	if !ok {
		return ports.ErrNotFound
	}
	if available < 0 {
		return domain.ErrNegativeAvailability
	}
	entry.Available = available
	t.staged[key] = entry
	return nil
}

func (t *Tx) InsertEntry(_ context.Context, entry *domain.MenuEntry) (*domain.MenuEntry, error) {
	clone := *entry
	clone.Key = normalize(clone.Key)
	if _, ok := t.lookup(clone.Key); ok {
		return nil, ports.ErrEntryExists
	}
	t.repo.nextID++
	clone.ID = t.repo.nextID
	t.staged[clone.Key] = clone
	result := clone
	return &result, nil
}

// Commit publishes staged writes and releases the repository lock.
func (t *Tx) Commit() {
	if t.closed {
		return
	}
	for key, entry := range t.staged {
		t.repo.entries[key] = entry
	}
	t.closed = true
	t.repo.mu.Unlock()
}

// Rollback discards staged writes. It is a no-op after Commit.
func (t *Tx) Rollback() {
	if t.closed {
		return
	}
	t.closed = true
	t.repo.mu.Unlock()
}

func (t *Tx) lookup(key domain.EntryKey) (domain.MenuEntry, bool) {
	if entry, ok := t.staged[key]; ok {
		return entry, true
	}
	entry, ok := t.repo.entries[key]
	return entry, ok
}

func normalize(key domain.EntryKey) domain.EntryKey {
	return domain.NewEntryKey(key.Scope, key.DishID, key.Date)
}
