package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	deadlinedomain "github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	"github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	"github.com/Apurer/canteen-orders/internal/domains/orders/ports"
	usersports "github.com/Apurer/canteen-orders/internal/domains/users/ports"
)

// Limits bound what a single order may ask for.
type Limits struct {
	MaxLineQuantity int
	MaxDaysAhead    int
}

// DefaultLimits mirrors the canteen's house rules.
var DefaultLimits = Limits{MaxLineQuantity: 10, MaxDaysAhead: 30}

// Service orchestrates order use cases. Every inventory change happens inside
// the same transaction as the order write that causes it.
type Service struct {
	repo      ports.Repository
	ledger    ports.Ledger
	deadlines ports.DeadlinePolicy
	users     ports.UserDirectory
	dishes    ports.DishCatalog

	notifier   ports.Notifier
	recipients []int64
	logger     *slog.Logger
	now        func() time.Time
	limits     Limits
}

type Option func(*Service)

func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithAdminRecipients adds chats that receive manager notifications even
// without a manager account.
func WithAdminRecipients(chatIDs ...int64) Option {
	return func(s *Service) {
		s.recipients = append(s.recipients, chatIDs...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLimits overrides the non-zero fields of DefaultLimits.
func WithLimits(l Limits) Option {
	return func(s *Service) {
		if l.MaxLineQuantity > 0 {
			s.limits.MaxLineQuantity = l.MaxLineQuantity
		}
		if l.MaxDaysAhead > 0 {
			s.limits.MaxDaysAhead = l.MaxDaysAhead
		}
	}
}

func NewService(repo ports.Repository, ledger ports.Ledger, deadlines ports.DeadlinePolicy, users ports.UserDirectory, dishes ports.DishCatalog, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		ledger:    ledger,
		deadlines: deadlines,
		users:     users,
		dishes:    dishes,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		limits:    DefaultLimits,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Finalize turns a cart into a pending order. Validation and the deadline are
// checked first; the duplicate check, the reservation of every line, and the
// insert then run in one transaction so a failure leaves nothing behind.
func (s *Service) Finalize(ctx context.Context, input ports.FinalizeInput) (*domain.Order, error) {
	if len(input.Lines) == 0 {
		return nil, mapError(domain.ErrEmptyOrder)
	}
	items := make([]domain.Item, 0, len(input.Lines))
	perDish := make(map[int64]int, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, mapError(domain.ErrInvalidQuantity)
		}
		perDish[line.DishID] += line.Quantity
		items = append(items, domain.Item{DishID: line.DishID, Quantity: line.Quantity, Price: line.Price})
	}
	// The cap applies to a dish, however many lines it is split over.
	for _, line := range input.Lines {
		if err := s.checkQuantity(perDish[line.DishID]); err != nil {
			return nil, err
		}
	}
	date := menudomain.DateOnly(input.Date)
	if err := s.checkDate(date); err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, input.UserID)
	if err != nil {
		return nil, s.actorError(err)
	}
	if user.Blocked {
		return nil, fmt.Errorf("%w: user %d is blocked", ErrForbidden, user.ID)
	}
	officeID := input.OfficeID
	if officeID == nil {
		officeID = user.OfficeID
	}

	order, err := domain.NewOrder(user.ID, date, input.CafeID, officeID, items)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.deadlines.CheckOrder(ctx, order.OrderDate, deadlineScope(order)); err != nil {
		return nil, err
	}

	now := s.now()
	order.CreatedAt, order.UpdatedAt = now, now
	var created *domain.Order
	err = s.repo.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		pending, err := tx.HasPending(ctx, order.UserID, order.OrderDate, 0)
		if err != nil {
			return err
		}
		if pending {
			return domain.ErrDuplicateOrder
		}
		if err := s.ledger.ReserveAll(ctx, tx.Ledger(), order.Reservations()); err != nil {
			return err
		}
		created, err = tx.Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}

	s.notifyManagers(ctx, newOrderMessage(user.DisplayName(), created))
	return created, nil
}

// ChangeStatus is the administrative transition. Deadlines do not apply, but
// the inventory effect of the transition does, and leaving CANCELLED fails
// cleanly when the portions are gone.
func (s *Service) ChangeStatus(ctx context.Context, input ports.ChangeStatusInput) (*domain.Order, error) {
	if !input.Status.Valid() {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	actor, err := s.users.Get(ctx, input.ActorID)
	if err != nil {
		return nil, s.actorError(err)
	}
	if !actor.IsManager() {
		return nil, fmt.Errorf("%w: user %d is not a manager", ErrForbidden, actor.ID)
	}

	var (
		saved    *domain.Order
		previous domain.Status
	)
	err = s.repo.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		order, err := tx.GetForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		previous = order.Status
		effect, err := order.ChangeStatus(input.Status)
		if err != nil {
			return err
		}
		if previous == order.Status {
			saved = order
			return nil
		}
		if order.Status == domain.StatusPending {
			pending, err := tx.HasPending(ctx, order.UserID, order.OrderDate, order.ID)
			if err != nil {
				return err
			}
			if pending {
				return domain.ErrDuplicateOrder
			}
		}
		if err := s.applyEffect(ctx, tx, effect, order.Reservations()); err != nil {
			return err
		}
		order.UpdatedAt = s.now()
		saved, err = tx.Save(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}

	if previous != saved.Status {
		s.notifyOwner(ctx, saved.UserID, statusMessage(saved))
	}
	return saved, nil
}

// Cancel lets the owner withdraw a pending or confirmed order before the cutoff.
// An order past cancelling is reported as such whatever the clock says.
func (s *Service) Cancel(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	var saved *domain.Order
	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		order, err := s.ownedForUpdate(ctx, tx, orderID, userID)
		if err != nil {
			return err
		}
		effect, err := order.Cancel()
		if err != nil {
			return err
		}
		if err := s.deadlines.CheckCancel(ctx, order.OrderDate, deadlineScope(order)); err != nil {
			return err
		}
		if err := s.applyEffect(ctx, tx, effect, order.Reservations()); err != nil {
			return err
		}
		order.UpdatedAt = s.now()
		saved, err = tx.Save(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}

	owner := fmt.Sprintf("user %d", userID)
	if user, err := s.users.Get(ctx, userID); err == nil {
		owner = user.DisplayName()
	}
	s.notifyManagers(ctx, cancelMessage(owner, saved))
	return saved, nil
}

// AddItem appends a dish to a pending order at its current price. The
// portions are reserved before the item is written.
func (s *Service) AddItem(ctx context.Context, input ports.AddItemInput) (*domain.Order, error) {
	if err := s.checkQuantity(input.Quantity); err != nil {
		return nil, err
	}
	dish, err := s.dishes.GetDish(ctx, input.DishID)
	if err != nil {
		return nil, err
	}
	if !dish.Available {
		return nil, menudomain.NewInsufficientAvailability(dish.ID, input.Quantity, 0)
	}

	var saved *domain.Order
	err = s.repo.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		order, err := s.ownedForUpdate(ctx, tx, input.OrderID, input.UserID)
		if err != nil {
			return err
		}
		if order.Status != domain.StatusPending {
			return domain.ErrNotEditable
		}
		if err := s.checkQuantity(order.DishQuantity(dish.ID) + input.Quantity); err != nil {
			return err
		}
		if err := s.deadlines.CheckOrder(ctx, order.OrderDate, deadlineScope(order)); err != nil {
			return err
		}
		item := domain.Item{DishID: dish.ID, Quantity: input.Quantity, Price: dish.Price}
		if err := s.ledger.ReserveAll(ctx, tx.Ledger(), order.ItemReservation(item)); err != nil {
			return err
		}
		if err := order.AddItem(item); err != nil {
			return err
		}
		order.UpdatedAt = s.now()
		saved, err = tx.Save(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// RemoveItem drops an item from a pending order and returns its portions.
func (s *Service) RemoveItem(ctx context.Context, input ports.RemoveItemInput) (*domain.Order, error) {
	var saved *domain.Order
	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		order, err := s.ownedForUpdate(ctx, tx, input.OrderID, input.UserID)
		if err != nil {
			return err
		}
		if order.Status != domain.StatusPending {
			return domain.ErrNotEditable
		}
		if err := s.deadlines.CheckCancel(ctx, order.OrderDate, deadlineScope(order)); err != nil {
			return err
		}
		removed, err := order.RemoveItem(input.ItemID)
		if err != nil {
			return err
		}
		if err := s.ledger.ReleaseAll(ctx, tx.Ledger(), order.ItemReservation(removed)); err != nil {
			return err
		}
		order.UpdatedAt = s.now()
		saved, err = tx.Save(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// ListForUser is the order history of one user.
func (s *Service) ListForUser(ctx context.Context, userID int64, filter ports.Filter) ([]*domain.Order, error) {
	filter.UserID = &userID
	return s.List(ctx, filter)
}

func (s *Service) List(ctx context.Context, filter ports.Filter) ([]*domain.Order, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	if filter.Date != nil {
		date := menudomain.DateOnly(*filter.Date)
		filter.Date = &date
	}
	return s.repo.List(ctx, filter)
}

// ownedForUpdate hides orders of other users behind ErrNotFound.
func (s *Service) ownedForUpdate(ctx context.Context, tx ports.Tx, orderID, userID int64) (*domain.Order, error) {
	order, err := tx.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ports.ErrNotFound
	}
	return order, nil
}

func (s *Service) applyEffect(ctx context.Context, tx ports.Tx, effect domain.Effect, reservations []menudomain.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	switch effect {
	case domain.EffectRelease:
		return s.ledger.ReleaseAll(ctx, tx.Ledger(), reservations)
	case domain.EffectReserve:
		return s.ledger.ReserveAll(ctx, tx.Ledger(), reservations)
	default:
		return nil
	}
}

func (s *Service) checkQuantity(quantity int) error {
	if quantity <= 0 {
		return mapError(domain.ErrInvalidQuantity)
	}
	if quantity > s.limits.MaxLineQuantity {
		return fmt.Errorf("%w: quantity %d exceeds the limit of %d", ErrInvalidInput, quantity, s.limits.MaxLineQuantity)
	}
	return nil
}

// checkDate accepts today up to MaxDaysAhead days ahead in the clock's zone.
func (s *Service) checkDate(date time.Time) error {
	if date.IsZero() {
		return mapError(domain.ErrMissingDate)
	}
	today := menudomain.DateOnly(s.now())
	if date.Before(today) {
		return fmt.Errorf("%w: %s is in the past", ErrInvalidInput, date.Format(time.DateOnly))
	}
	if date.After(today.AddDate(0, 0, s.limits.MaxDaysAhead)) {
		return fmt.Errorf("%w: %s is more than %d days ahead", ErrInvalidInput, date.Format(time.DateOnly), s.limits.MaxDaysAhead)
	}
	return nil
}

func (s *Service) actorError(err error) error {
	if errors.Is(err, usersports.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	return err
}

func deadlineScope(order *domain.Order) deadlinedomain.Scope {
	return deadlinedomain.Scope{OfficeID: order.OfficeID, CafeID: order.CafeID}
}

var _ ports.Service = (*Service)(nil)
