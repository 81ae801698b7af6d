package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/canteen-orders/internal/domains/cart/domain"
	"github.com/Apurer/canteen-orders/internal/domains/cart/ports"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	orderdomain "github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	orderports "github.com/Apurer/canteen-orders/internal/domains/orders/ports"
)

// DefaultMaxLineQuantity caps a single cart line.
const DefaultMaxLineQuantity = 10

// Service runs cart use cases. Availability is read live but never written;
// the ledger is only touched when Checkout hands the cart to the orders service.
type Service struct {
	store     ports.SessionStore
	inventory ports.Inventory
	dishes    ports.DishCatalog
	checkout  ports.Checkout
	maxLine   int
	now       func() time.Time
}

type Option func(*Service)

func WithMaxLineQuantity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLine = n
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

func NewService(store ports.SessionStore, inventory ports.Inventory, dishes ports.DishCatalog, checkout ports.Checkout, opts ...Option) *Service {
	s := &Service{
		store:     store,
		inventory: inventory,
		dishes:    dishes,
		checkout:  checkout,
		maxLine:   DefaultMaxLineQuantity,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the session's cart, or a fresh one when none is stored. A cart
// owned by another user is reported as not found.
func (s *Service) Get(ctx context.Context, sessionID string, userID int64) (*domain.Cart, error) {
	if userID <= 0 {
		return nil, mapError(domain.ErrMissingOwner)
	}
	cart, err := s.store.Load(ctx, sessionID)
	if errors.Is(err, ports.ErrNotFound) {
		cart, err = domain.New(sessionID)
		if err != nil {
			return nil, mapError(err)
		}
		return cart, nil
	}
	if err != nil {
		return nil, err
	}
	if !cart.OwnedBy(userID) {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, sessionID)
	}
	return cart, nil
}

func (s *Service) SelectTarget(ctx context.Context, sessionID string, userID int64, date time.Time, cafeID, officeID *int64) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, userID, func(cart *domain.Cart) error {
		return cart.SetTarget(date, cafeID, officeID)
	})
}

// AddOrReplace sets a dish's quantity at the dish's current price.
func (s *Service) AddOrReplace(ctx context.Context, sessionID string, userID, dishID int64, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, userID, func(cart *domain.Cart) error {
		if !cart.HasTarget() {
			return domain.ErrNoTarget
		}
		dish, available, err := s.lookup(ctx, cart, dishID)
		if err != nil {
			return err
		}
		line := domain.Line{DishID: dish.ID, Name: dish.Name, Quantity: quantity, Price: dish.Price}
		return cart.AddOrReplace(line, available, s.maxLine)
	})
}

func (s *Service) Increment(ctx context.Context, sessionID string, userID, dishID int64, delta int) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, userID, func(cart *domain.Cart) error {
		if cart.Quantity(dishID) == 0 {
			return domain.ErrLineNotFound
		}
		_, available, err := s.lookup(ctx, cart, dishID)
		if err != nil {
			return err
		}
		_, err = cart.Increment(dishID, delta, available, s.maxLine)
		return err
	})
}

func (s *Service) Decrement(ctx context.Context, sessionID string, userID, dishID int64, delta int) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, userID, func(cart *domain.Cart) error {
		_, err := cart.Decrement(dishID, delta)
		return err
	})
}

func (s *Service) Remove(ctx context.Context, sessionID string, userID, dishID int64) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, userID, func(cart *domain.Cart) error {
		return cart.Remove(dishID)
	})
}

// Clear drops the session's cart. Clearing a missing cart is a no-op.
func (s *Service) Clear(ctx context.Context, sessionID string, userID int64) error {
	if sessionID == "" {
		return mapError(domain.ErrMissingSession)
	}
	if _, err := s.Get(ctx, sessionID, userID); err != nil {
		return err
	}
	err := s.store.Delete(ctx, sessionID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) Totals(ctx context.Context, sessionID string, userID int64) (int, decimal.Decimal, error) {
	cart, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return 0, decimal.Zero, err
	}
	count, total := cart.Totals()
	return count, total, nil
}

// Checkout hands the cart to the orders service. The cart is discarded only
// when the order was created; on any failure it stays for the user to adjust.
// Only the cart's owner can check it out, and the order is placed for them.
func (s *Service) Checkout(ctx context.Context, sessionID string, userID int64) (*orderdomain.Order, error) {
	cart, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, mapError(domain.ErrEmptyCart)
	}
	if !cart.HasTarget() {
		return nil, mapError(domain.ErrNoTarget)
	}
	lines := make([]orderports.Line, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, orderports.Line{DishID: line.DishID, Quantity: line.Quantity, Price: line.Price})
	}
	order, err := s.checkout.Finalize(ctx, orderports.FinalizeInput{
		UserID:   userID,
		OfficeID: cart.OfficeID,
		CafeID:   cart.CafeID,
		Date:     cart.Date,
		Lines:    lines,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Clear(ctx, sessionID, userID); err != nil {
		return order, err
	}
	return order, nil
}

func (s *Service) mutate(ctx context.Context, sessionID string, userID int64, fn func(cart *domain.Cart) error) (*domain.Cart, error) {
	cart, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, mapError(err)
	}
	if err := cart.Claim(userID); err != nil {
		return nil, mapError(err)
	}
	cart.UpdatedAt = s.now()
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// lookup returns the dish and the portions still free for it on the cart's
// date. A dish taken off the menu has nothing free.
func (s *Service) lookup(ctx context.Context, cart *domain.Cart, dishID int64) (*menudomain.Dish, int, error) {
	dish, err := s.dishes.GetDish(ctx, dishID)
	if err != nil {
		return nil, 0, err
	}
	if !dish.Available {
		return dish, 0, nil
	}
	available, err := s.inventory.Available(ctx, menudomain.NewEntryKey(cart.Scope(), dish.ID, cart.Date))
	if err != nil {
		return nil, 0, err
	}
	return dish, available, nil
}

var _ ports.Service = (*Service)(nil)
