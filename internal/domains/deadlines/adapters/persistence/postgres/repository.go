package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
	"github.com/Apurer/canteen-orders/internal/domains/deadlines/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists deadlines in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

func (r *Repository) Save(ctx context.Context, deadline *domain.Deadline) (*domain.Deadline, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if deadline == nil {
		return nil, errors.New("deadline is nil")
	}
	record := toRecord(deadline)
	db := r.db.WithContext(ctx)
	if record.ID != 0 {
		db = db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"deadline_date": record.DeadlineDate,
				"cutoff_at":     record.Cutoff,
				"office_id":     record.OfficeID,
				"cafe_id":       record.CafeID,
				"is_active":     record.Active,
				"updated_at":    gorm.Expr("NOW()"),
			}),
		})
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Deadline, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record deadlineRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&deadlineRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// ListForDate returns every deadline row for the day, latest cutoff first.
func (r *Repository) ListForDate(ctx context.Context, date time.Time) ([]*domain.Deadline, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []deadlineRecord
	if err := r.db.WithContext(ctx).
		Where("deadline_date = ?", domain.DateOnly(date)).
		Order("cutoff_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) List(ctx context.Context, activeOnly bool) ([]*domain.Deadline, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("deadline_date, cutoff_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var records []deadlineRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres deadline repository not configured")
	}
	return nil
}

func toRecord(d *domain.Deadline) deadlineRecord {
	return deadlineRecord{
		ID:           d.ID,
		DeadlineDate: domain.DateOnly(d.Date),
		Cutoff:       d.Cutoff,
		OfficeID:     d.OfficeID,
		CafeID:       d.CafeID,
		Active:       d.Active,
	}
}

func (r deadlineRecord) toDomain() *domain.Deadline {
	return &domain.Deadline{
		ID:       r.ID,
		Date:     domain.DateOnly(r.DeadlineDate),
		Cutoff:   r.Cutoff,
		OfficeID: r.OfficeID,
		CafeID:   r.CafeID,
		Active:   r.Active,
	}
}

func toDomainList(records []deadlineRecord) []*domain.Deadline {
	list := make([]*domain.Deadline, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list
}
