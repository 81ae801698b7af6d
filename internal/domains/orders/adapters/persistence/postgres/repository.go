package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	menupostgres "github.com/Apurer/canteen-orders/internal/domains/menu/adapters/persistence/postgres"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	menuports "github.com/Apurer/canteen-orders/internal/domains/menu/ports"
	"github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	"github.com/Apurer/canteen-orders/internal/domains/orders/ports"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.Tx         = (*tx)(nil)
)

// Repository persists orders in PostgreSQL using GORM. Transactions are
// shared with the menu ledger so reservations commit with the order.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// orderRecord maps the order header. One pending order per user and date is
// enforced by the partial unique index created in migrations.
type orderRecord struct {
	ID          int64             `gorm:"primaryKey;column:id"`
	UserID      int64             `gorm:"column:user_id;index:idx_orders_user_date"`
	CafeID      *int64            `gorm:"column:cafe_id"`
	OfficeID    *int64            `gorm:"column:office_id"`
	OrderDate   time.Time         `gorm:"column:order_date;type:date;index:idx_orders_user_date;index"`
	Status      string            `gorm:"column:status;type:varchar(16);index"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2)"`
	CreatedAt   time.Time         `gorm:"column:created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at"`
	Items       []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

// orderItemRecord keeps the price captured when the item was ordered.
type orderItemRecord struct {
	ID       int64           `gorm:"primaryKey;column:id"`
	OrderID  int64           `gorm:"column:order_id;index"`
	DishID   int64           `gorm:"column:dish_id;index"`
	Quantity int             `gorm:"column:quantity;check:chk_order_items_quantity,quantity > 0"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric(10,2)"`
}

func (orderItemRecord) TableName() string { return "order_items" }

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns matching orders, newest date first.
func (r *Repository) List(ctx context.Context, filter ports.Filter) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&orderRecord{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Date != nil {
		query = query.Where("order_date = ?", menudomain.DateOnly(*filter.Date))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if len(filter.DishIDs) > 0 {
		query = query.Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.dish_id = ANY(?))",
			pq.Array(filter.DishIDs))
	}
	var records []orderRecord
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("order_date DESC").Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// WithinTx runs fn in a database transaction; any error rolls everything back.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &tx{db: db, ledger: menupostgres.NewLedgerTx(db)})
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

type tx struct {
	db     *gorm.DB
	ledger *menupostgres.LedgerTx
}

func (t *tx) Ledger() menuports.LedgerTx {
	return t.ledger
}

// GetForUpdate locks the order header with SELECT ... FOR UPDATE.
func (t *tx) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	var record orderRecord
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	if err := t.db.WithContext(ctx).Where("order_id = ?", id).Order("id").Find(&record.Items).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (t *tx) HasPending(ctx context.Context, userID int64, date time.Time, excludeID int64) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).Model(&orderRecord{}).
		Where("user_id = ? AND order_date = ? AND status = ? AND id <> ?",
			userID, menudomain.DateOnly(date), string(domain.StatusPending), excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (t *tx) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	record.ID = 0
	if err := t.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateOrder
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Save updates the header, deletes dropped items, and inserts new ones.
// Existing items are never rewritten since their price is a snapshot.
func (t *tx) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	result := t.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", record.ID).
		Updates(map[string]any{
			"status":       record.Status,
			"total_amount": record.TotalAmount,
			"updated_at":   record.UpdatedAt,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateOrder
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}

	kept := make([]int64, 0, len(record.Items))
	var added []orderItemRecord
	for _, item := range record.Items {
		if item.ID == 0 {
			item.OrderID = record.ID
			added = append(added, item)
			continue
		}
		kept = append(kept, item.ID)
	}
	dropped := t.db.WithContext(ctx).Where("order_id = ?", record.ID)
	if len(kept) > 0 {
		dropped = dropped.Where("id NOT IN ?", kept)
	}
	if err := dropped.Delete(&orderItemRecord{}).Error; err != nil {
		return nil, err
	}
	if len(added) > 0 {
		if err := t.db.WithContext(ctx).Create(&added).Error; err != nil {
			return nil, err
		}
	}
	return t.GetForUpdate(ctx, record.ID)
}

func toRecord(order *domain.Order) orderRecord {
	record := orderRecord{
		ID:          order.ID,
		UserID:      order.UserID,
		CafeID:      order.CafeID,
		OfficeID:    order.OfficeID,
		OrderDate:   menudomain.DateOnly(order.OrderDate),
		Status:      string(order.Status),
		TotalAmount: order.Total,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
		Items:       make([]orderItemRecord, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		record.Items = append(record.Items, orderItemRecord{
			ID:       item.ID,
			OrderID:  order.ID,
			DishID:   item.DishID,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return record
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:        r.ID,
		UserID:    r.UserID,
		CafeID:    r.CafeID,
		OfficeID:  r.OfficeID,
		OrderDate: menudomain.DateOnly(r.OrderDate),
		Status:    domain.Status(r.Status),
		Total:     r.TotalAmount,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Items:     make([]domain.Item, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.Item{
			ID:       item.ID,
			DishID:   item.DishID,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return order
}
