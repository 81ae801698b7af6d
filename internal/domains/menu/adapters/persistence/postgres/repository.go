package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	"github.com/Apurer/canteen-orders/internal/domains/menu/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists menu entries in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed inventory table. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// menuEntryRecord maps a ledger row. The check constraint backs the non-negative invariant.
type menuEntryRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Scope     int64     `gorm:"column:scope;uniqueIndex:ux_menu_entries_key"`
	DishID    int64     `gorm:"column:dish_id;uniqueIndex:ux_menu_entries_key"`
	MenuDate  time.Time `gorm:"column:menu_date;type:date;uniqueIndex:ux_menu_entries_key"`
	Available int       `gorm:"column:available_quantity;check:chk_menu_entries_available,available_quantity >= 0"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (menuEntryRecord) TableName() string { return "menu_entries" }

func (r *Repository) GetEntry(ctx context.Context, key domain.EntryKey) (*domain.MenuEntry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record menuEntryRecord
	if err := keyScope(r.db.WithContext(ctx), key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ListEntries(ctx context.Context, scope domain.Scope, date time.Time) ([]*domain.MenuEntry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []menuEntryRecord
	if err := r.db.WithContext(ctx).
		Where("scope = ? AND menu_date = ?", int64(scope), domain.DateOnly(date)).
		Order("dish_id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]*domain.MenuEntry, 0, len(records))
	for i := range records {
		entries = append(entries, records[i].toDomain())
	}
	return entries, nil
}

func (r *Repository) DeleteEntry(ctx context.Context, key domain.EntryKey) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := keyScope(r.db.WithContext(ctx), key).Delete(&menuEntryRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// WithinTx runs fn in a database transaction; any error rolls everything back.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewLedgerTx(tx))
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres menu repository not configured")
	}
	return nil
}

// LedgerTx runs ledger reads and writes on an open GORM transaction. Other
// adapters sharing the transaction build one with NewLedgerTx.
type LedgerTx struct {
	tx *gorm.DB
}

func NewLedgerTx(tx *gorm.DB) *LedgerTx {
	return &LedgerTx{tx: tx}
}

// LockEntry reads the row with SELECT ... FOR UPDATE.
func (t *LedgerTx) LockEntry(ctx context.Context, key domain.EntryKey) (*domain.MenuEntry, error) {
	var record menuEntryRecord
	err := keyScope(t.tx.WithContext(ctx), key).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (t *LedgerTx) SetAvailable(ctx context.Context, key domain.EntryKey, available int) error {
	if available < 0 {
		return domain.ErrNegativeAvailability
	}
	result := keyScope(t.tx.WithContext(ctx).Model(&menuEntryRecord{}), key).
		Updates(map[string]any{
			"available_quantity": available,
			"updated_at":         gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (t *LedgerTx) InsertEntry(ctx context.Context, entry *domain.MenuEntry) (*domain.MenuEntry, error) {
	record := toRecord(entry)
	if err := t.tx.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrEntryExists
		}
		return nil, err
	}
	return record.toDomain(), nil
}

var _ ports.LedgerTx = (*LedgerTx)(nil)

func keyScope(db *gorm.DB, key domain.EntryKey) *gorm.DB {
	return db.Where("scope = ? AND dish_id = ? AND menu_date = ?", int64(key.Scope), key.DishID, domain.DateOnly(key.Date))
}

func toRecord(entry *domain.MenuEntry) menuEntryRecord {
	return menuEntryRecord{
		ID:        entry.ID,
		Scope:     int64(entry.Key.Scope),
		DishID:    entry.Key.DishID,
		MenuDate:  domain.DateOnly(entry.Key.Date),
		Available: entry.Available,
	}
}

func (r menuEntryRecord) toDomain() *domain.MenuEntry {
	return &domain.MenuEntry{
		ID:        r.ID,
		Key:       domain.NewEntryKey(domain.Scope(r.Scope), r.DishID, r.MenuDate),
		Available: r.Available,
	}
}
