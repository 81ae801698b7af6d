package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// pendingOrderIndex backs the one-pending-order-per-user-per-date rule at the
// storage layer. GORM tags cannot express partial indexes.
const pendingOrderIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_user_date_pending
	ON orders (user_id, order_date) WHERE status = 'pending'`

// Run applies the schema for the bounded contexts. Adapters never automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&dishRecord{},
		&menuEntryRecord{},
		&deadlineRecord{},
		&userRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&cartSessionRecord{},
	); err != nil {
		return err
	}
	return db.Exec(pendingOrderIndex).Error
}

// Dish schema mirrors the menu Postgres dish adapter.
type dishRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	Name        string          `gorm:"column:name;size:255"`
	Description string          `gorm:"column:description"`
	Category    string          `gorm:"column:category;size:64;index"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2)"`
	Available   bool            `gorm:"column:is_available"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (dishRecord) TableName() string { return "dishes" }

// Menu entry schema mirrors the ledger adapter. The check constraint keeps
// available_quantity non-negative even for writes outside the ledger.
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

// Deadline schema mirrors the deadlines Postgres adapter.
type deadlineRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	DeadlineDate time.Time `gorm:"column:deadline_date;type:date;index:idx_order_deadlines_date_active"`
	Cutoff       time.Time `gorm:"column:cutoff_at"`
	OfficeID     *int64    `gorm:"column:office_id;index"`
	CafeID       *int64    `gorm:"column:cafe_id;index"`
	Active       bool      `gorm:"column:is_active;index:idx_order_deadlines_date_active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (deadlineRecord) TableName() string { return "order_deadlines" }

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	ChatID    int64     `gorm:"column:chat_id;uniqueIndex"`
	Username  string    `gorm:"column:username;size:255"`
	FullName  string    `gorm:"column:full_name;size:255"`
	Role      string    `gorm:"column:role;type:varchar(16);index"`
	OfficeID  *int64    `gorm:"column:office_id;index"`
	Blocked   bool      `gorm:"column:is_blocked"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Order schema mirrors the orders Postgres adapter.
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

type orderItemRecord struct {
	ID       int64           `gorm:"primaryKey;column:id"`
	OrderID  int64           `gorm:"column:order_id;index"`
	DishID   int64           `gorm:"column:dish_id;index"`
	Quantity int             `gorm:"column:quantity;check:chk_order_items_quantity,quantity > 0"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric(10,2)"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Cart session schema mirrors the cart Postgres session store.
type cartSessionRecord struct {
	SessionID string    `gorm:"primaryKey;column:session_id;size:128"`
	Payload   []byte    `gorm:"column:payload;type:jsonb"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartSessionRecord) TableName() string { return "cart_sessions" }
