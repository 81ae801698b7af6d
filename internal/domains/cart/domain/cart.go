package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
)

var (
	ErrMissingSession  = errors.New("cart session id is required")
	ErrMissingOwner    = errors.New("cart owner is required")
	ErrInvalidDishID   = errors.New("dish id must be greater than zero")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("price cannot be negative")
	ErrLineLimit       = errors.New("quantity exceeds the per-line limit")
	ErrLineNotFound    = errors.New("dish is not in the cart")
	ErrNoTarget        = errors.New("cart has no target date")
	ErrEmptyCart       = errors.New("cart is empty")
)

// Line is one dish in the cart with the price seen when it was picked.
type Line struct {
	DishID   int64           `json:"dishId"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the draft of one conversation. Quantities here are not reserved;
// the ledger is consulted again when the cart is committed.
type Cart struct {
	SessionID string    `json:"sessionId"`
	OwnerID   int64     `json:"ownerId,omitempty"`
	Date      time.Time `json:"date"`
	CafeID    *int64    `json:"cafeId,omitempty"`
	OfficeID  *int64    `json:"officeId,omitempty"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New(sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	return &Cart{SessionID: sessionID, Lines: []Line{}}, nil
}

// Claim binds the cart to the first user who writes it. Once owned, the
// owner never changes.
func (c *Cart) Claim(userID int64) error {
	if userID <= 0 {
		return ErrMissingOwner
	}
	if c.OwnerID == 0 {
		c.OwnerID = userID
	}
	return nil
}

// OwnedBy reports whether userID may see and edit the cart. An unclaimed
// cart belongs to nobody yet and is open to its first writer.
func (c *Cart) OwnedBy(userID int64) bool {
	return c.OwnerID == 0 || c.OwnerID == userID
}

// Scope is the inventory pool the cart draws from.
func (c *Cart) Scope() menudomain.Scope {
	return menudomain.ScopeFor(c.CafeID)
}

// HasTarget reports whether a date has been chosen.
func (c *Cart) HasTarget() bool {
	return !c.Date.IsZero()
}

// SetTarget points the cart at a date and cafe. Moving a non-empty cart to a
// different target clears it since its lines were picked from another menu.
func (c *Cart) SetTarget(date time.Time, cafeID, officeID *int64) error {
	date = menudomain.DateOnly(date)
	if date.IsZero() {
		return menudomain.ErrMissingDate
	}
	if len(c.Lines) > 0 && (!date.Equal(c.Date) || menudomain.ScopeFor(cafeID) != c.Scope()) {
		c.Lines = []Line{}
	}
	c.Date = date
	c.CafeID = cafeID
	c.OfficeID = officeID
	return nil
}

// Quantity returns the quantity held for dishID, zero when absent.
func (c *Cart) Quantity(dishID int64) int {
	if i := c.index(dishID); i >= 0 {
		return c.Lines[i].Quantity
	}
	return 0
}

// AddOrReplace sets the quantity of a dish. The quantity already held for the
// dish counts towards the ceiling, so the ceiling is available plus existing,
// further capped by maxLine.
func (c *Cart) AddOrReplace(line Line, available, maxLine int) error {
	if !c.HasTarget() {
		return ErrNoTarget
	}
	if line.DishID <= 0 {
		return ErrInvalidDishID
	}
	if line.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if line.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if maxLine > 0 && line.Quantity > maxLine {
		return fmt.Errorf("%w: %d > %d", ErrLineLimit, line.Quantity, maxLine)
	}
	existing := c.Quantity(line.DishID)
	if ceiling := available + existing; line.Quantity > ceiling {
		return menudomain.NewInsufficientAvailability(line.DishID, line.Quantity, ceiling)
	}
	if i := c.index(line.DishID); i >= 0 {
		c.Lines[i] = line
		return nil
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// Increment raises a line by delta, clamped to the same ceiling as
// AddOrReplace. It returns the resulting quantity.
func (c *Cart) Increment(dishID int64, delta, available, maxLine int) (int, error) {
	if delta <= 0 {
		return 0, ErrInvalidQuantity
	}
	i := c.index(dishID)
	if i < 0 {
		return 0, ErrLineNotFound
	}
	existing := c.Lines[i].Quantity
	ceiling := available + existing
	if maxLine > 0 && ceiling > maxLine {
		ceiling = maxLine
	}
	next := existing + delta
	if next > ceiling {
		next = ceiling
	}
	if next < existing {
		next = existing
	}
	c.Lines[i].Quantity = next
	return next, nil
}

// Decrement lowers a line by delta but never below one.
func (c *Cart) Decrement(dishID int64, delta int) (int, error) {
	if delta <= 0 {
		return 0, ErrInvalidQuantity
	}
	i := c.index(dishID)
	if i < 0 {
		return 0, ErrLineNotFound
	}
	next := c.Lines[i].Quantity - delta
	if next < 1 {
		next = 1
	}
	c.Lines[i].Quantity = next
	return next, nil
}

// Remove drops a line. Removing the last line also clears the target date.
func (c *Cart) Remove(dishID int64) error {
	i := c.index(dishID)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines = append(c.Lines[:i:i], c.Lines[i+1:]...)
	if len(c.Lines) == 0 {
		c.Date = time.Time{}
	}
	return nil
}

// Totals returns the number of lines and the sum of their subtotals.
func (c *Cart) Totals() (int, decimal.Decimal) {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return len(c.Lines), total
}

// Clear empties the cart and forgets the target.
func (c *Cart) Clear() {
	c.Lines = []Line{}
	c.Date = time.Time{}
	c.CafeID = nil
	c.OfficeID = nil
}

func (c *Cart) Clone() *Cart {
	clone := *c
	clone.Lines = append([]Line{}, c.Lines...)
	return &clone
}

func (c *Cart) index(dishID int64) int {
	for i, line := range c.Lines {
		if line.DishID == dishID {
			return i
		}
	}
	return -1
}
