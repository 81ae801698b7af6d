package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
)

var (
	ErrInvalidUser     = errors.New("user id must be greater than zero")
	ErrMissingDate     = errors.New("order date is required")
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrInvalidDishID   = errors.New("dish id must be greater than zero")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("price cannot be negative")
	ErrNotEditable     = errors.New("only pending orders can be edited")
	ErrNotCancellable  = errors.New("order can no longer be cancelled")
	ErrItemNotFound    = errors.New("order item not found")
	ErrDuplicateOrder  = errors.New("a pending order already exists for this date")
)

// Item is an order line. Price is the dish price captured at commit time.
type Item struct {
	ID       int64
	DishID   int64
	Quantity int
	Price    decimal.Decimal
}

// Subtotal is price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i Item) validate() error {
	if i.DishID <= 0 {
		return ErrInvalidDishID
	}
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.Price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// Order is the durable record of a committed cart.
type Order struct {
	ID        int64
	UserID    int64
	CafeID    *int64
	OfficeID  *int64
	OrderDate time.Time
	Status    Status
	Total     decimal.Decimal
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder validates the lines and builds a pending order.
func NewOrder(userID int64, date time.Time, cafeID, officeID *int64, items []Item) (*Order, error) {
	order := &Order{
		UserID:    userID,
		CafeID:    cafeID,
		OfficeID:  officeID,
		OrderDate: menudomain.DateOnly(date),
		Status:    StatusPending,
		Items:     append([]Item(nil), items...),
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	order.Recalculate()
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.UserID <= 0 {
		return ErrInvalidUser
	}
	if o.OrderDate.IsZero() {
		return ErrMissingDate
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	for _, item := range o.Items {
		if err := item.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Recalculate sets Total to the sum of item subtotals.
func (o *Order) Recalculate() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.Total = total
}

// Scope is the inventory pool the order draws from.
func (o *Order) Scope() menudomain.Scope {
	return menudomain.ScopeFor(o.CafeID)
}

// Reservations lists the ledger quantities held by the order.
func (o *Order) Reservations() []menudomain.Reservation {
	return reservationsFor(o.Scope(), o.OrderDate, o.Items...)
}

// ItemReservation lists the ledger quantity held by a single item.
func (o *Order) ItemReservation(item Item) []menudomain.Reservation {
	return reservationsFor(o.Scope(), o.OrderDate, item)
}

// ChangeStatus applies an administrative transition.
func (o *Order) ChangeStatus(to Status) (Effect, error) {
	effect, err := Transition(o.Status, to)
	if err != nil {
		return EffectNone, err
	}
	o.Status = to
	return effect, nil
}

// Cancel applies a user cancellation, allowed only before the order is fulfilled.
func (o *Order) Cancel() (Effect, error) {
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return EffectNone, ErrNotCancellable
	}
	return o.ChangeStatus(StatusCancelled)
}

// DishQuantity sums the portions of dishID across all items.
func (o *Order) DishQuantity(dishID int64) int {
	total := 0
	for _, item := range o.Items {
		if item.DishID == dishID {
			total += item.Quantity
		}
	}
	return total
}

// AddItem appends a line to a pending order and grows the total by its subtotal.
func (o *Order) AddItem(item Item) error {
	if o.Status != StatusPending {
		return ErrNotEditable
	}
	if err := item.validate(); err != nil {
		return err
	}
	o.Items = append(o.Items, item)
	o.Total = o.Total.Add(item.Subtotal())
	return nil
}

// RemoveItem drops a line from a pending order. The total shrinks by the line
// subtotal and never goes below zero.
func (o *Order) RemoveItem(itemID int64) (Item, error) {
	if o.Status != StatusPending {
		return Item{}, ErrNotEditable
	}
	for i, item := range o.Items {
		if item.ID != itemID {
			continue
		}
		o.Items = append(o.Items[:i:i], o.Items[i+1:]...)
		o.Total = o.Total.Sub(item.Subtotal())
		if o.Total.IsNegative() {
			o.Total = decimal.Zero
		}
		return item, nil
	}
	return Item{}, ErrItemNotFound
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	clone := *o
	clone.Items = append([]Item(nil), o.Items...)
	return &clone
}

func reservationsFor(scope menudomain.Scope, date time.Time, items ...Item) []menudomain.Reservation {
	reservations := make([]menudomain.Reservation, 0, len(items))
	for _, item := range items {
		reservations = append(reservations, menudomain.Reservation{
			Key:      menudomain.NewEntryKey(scope, item.DishID, date),
			Quantity: item.Quantity,
		})
	}
	return reservations
}
