package application

import (
	"context"
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
	"github.com/Apurer/canteen-orders/internal/domains/deadlines/ports"
)

// Service resolves ordering cutoffs and administers deadline rows.
type Service struct {
	repo     ports.Repository
	now      func() time.Time
	fallback *domain.ClockTime
	location *time.Location
}

type Option func(*Service)

// WithClock overrides the time source used for cutoff comparisons.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaultCutoff applies a daily cutoff to dates that have no matching deadline row.
func WithDefaultCutoff(clock domain.ClockTime, loc *time.Location) Option {
	return func(s *Service) {
		s.fallback = &clock
		if loc != nil {
			s.location = loc
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, location: time.Local}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Resolve returns the governing deadline for date and scope, or nil when ordering is unrestricted.
func (s *Service) Resolve(ctx context.Context, date time.Time, scope domain.Scope) (*domain.Deadline, error) {
	if date.IsZero() {
		return nil, mapError(domain.ErrMissingDate)
	}
	date = domain.DateOnly(date)
	candidates, err := s.repo.ListForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if d := domain.Resolve(candidates, date, scope); d != nil {
		return d, nil
	}
	if s.fallback == nil {
		return nil, nil
	}
	return &domain.Deadline{Date: date, Cutoff: s.fallback.On(date, s.location), Active: true}, nil
}

func (s *Service) CanOrder(ctx context.Context, date time.Time, scope domain.Scope) (bool, error) {
	d, err := s.Resolve(ctx, date, scope)
	if err != nil {
		return false, err
	}
	return d == nil || !d.Passed(s.now()), nil
}

// CanCancel follows the same cutoff as ordering: once the kitchen closes the
// day, orders can no longer be backed out.
func (s *Service) CanCancel(ctx context.Context, date time.Time, scope domain.Scope) (bool, error) {
	return s.CanOrder(ctx, date, scope)
}

// CheckOrder returns a wrapped domain.ErrDeadlinePassed when ordering is closed.
func (s *Service) CheckOrder(ctx context.Context, date time.Time, scope domain.Scope) error {
	return s.check(ctx, date, scope)
}

// CheckCancel returns a wrapped domain.ErrDeadlinePassed when cancelling is closed.
func (s *Service) CheckCancel(ctx context.Context, date time.Time, scope domain.Scope) error {
	return s.check(ctx, date, scope)
}

func (s *Service) check(ctx context.Context, date time.Time, scope domain.Scope) error {
	d, err := s.Resolve(ctx, date, scope)
	if err != nil {
		return err
	}
	if d != nil && d.Passed(s.now()) {
		return d.PassedError()
	}
	return nil
}

func (s *Service) Create(ctx context.Context, date, cutoff time.Time, scope domain.Scope) (*domain.Deadline, error) {
	d, err := domain.NewDeadline(date, cutoff, scope)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, d)
}

func (s *Service) Update(ctx context.Context, input ports.UpdateInput) (*domain.Deadline, error) {
	d, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Cutoff != nil {
		d.Cutoff = *input.Cutoff
	}
	if input.Active != nil {
		d.Active = *input.Active
	}
	if err := d.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*domain.Deadline, error) {
	return s.repo.List(ctx, activeOnly)
}

var _ ports.Service = (*Service)(nil)
