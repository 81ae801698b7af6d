package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	"github.com/Apurer/canteen-orders/internal/domains/menu/ports"
)

var _ ports.DishRepository = (*DishRepository)(nil)

// DishRepository persists the dish catalogue in PostgreSQL.
type DishRepository struct {
	db *gorm.DB
}

func NewDishRepository(db *gorm.DB) *DishRepository {
	return &DishRepository{db: db}
}

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

// Save inserts a dish or updates it in place.
func (r *DishRepository) Save(ctx context.Context, dish *domain.Dish) (*domain.Dish, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if dish == nil {
		return nil, errors.New("dish is nil")
	}
	record := toDishRecord(dish)
	db := r.db.WithContext(ctx)
	if record.ID != 0 {
		db = db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":         record.Name,
				"description":  record.Description,
				"category":     record.Category,
				"price":        record.Price,
				"is_available": record.Available,
				"updated_at":   gorm.Expr("NOW()"),
			}),
		})
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *DishRepository) GetByID(ctx context.Context, id int64) (*domain.Dish, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record dishRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrDishNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *DishRepository) ListByIDs(ctx context.Context, ids []int64) ([]*domain.Dish, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.Dish{}, nil
	}
	var records []dishRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	return toDishes(records), nil
}

func (r *DishRepository) List(ctx context.Context) ([]*domain.Dish, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []dishRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDishes(records), nil
}

func (r *DishRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres dish repository not configured")
	}
	return nil
}

func toDishRecord(dish *domain.Dish) dishRecord {
	return dishRecord{
		ID:          dish.ID,
		Name:        dish.Name,
		Description: dish.Description,
		Category:    dish.Category,
		Price:       dish.Price,
		Available:   dish.Available,
	}
}

func (r dishRecord) toDomain() *domain.Dish {
	return &domain.Dish{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Available:   r.Available,
	}
}

func toDishes(records []dishRecord) []*domain.Dish {
	dishes := make([]*domain.Dish, 0, len(records))
	for i := range records {
		dishes = append(dishes, records[i].toDomain())
	}
	return dishes
}
