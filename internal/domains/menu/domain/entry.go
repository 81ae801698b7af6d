package domain

import (
	"errors"
	"time"
)

// Scope identifies the inventory pool a menu entry belongs to: a cafe, or the
// global menu when zero.
type Scope int64

// GlobalScope is the menu shared by every cafe without its own menu.
const GlobalScope Scope = 0

var (
	ErrInvalidDishID        = errors.New("dish id must be greater than zero")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrNegativeAvailability = errors.New("available quantity cannot be negative")
	ErrMissingDate          = errors.New("menu date is required")
)

// ScopeFor maps an optional cafe reference onto its inventory scope.
func ScopeFor(cafeID *int64) Scope {
	if cafeID == nil || *cafeID <= 0 {
		return GlobalScope
	}
	return Scope(*cafeID)
}

// DateOnly truncates t to the calendar day it falls on, expressed as midnight UTC.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EntryKey addresses one ledger row.
type EntryKey struct {
	Scope  Scope
	DishID int64
	Date   time.Time
}

// NewEntryKey normalizes the date component so keys compare by calendar day.
func NewEntryKey(scope Scope, dishID int64, date time.Time) EntryKey {
	return EntryKey{Scope: scope, DishID: dishID, Date: DateOnly(date)}
}

// Validate rejects keys that cannot address a row.
func (k EntryKey) Validate() error {
	if k.DishID <= 0 {
		return ErrInvalidDishID
	}
	if k.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Less orders keys by scope, date, then dish. Row locks are always taken in this order.
func (k EntryKey) Less(other EntryKey) bool {
	if k.Scope != other.Scope {
		return k.Scope < other.Scope
	}
	if !k.Date.Equal(other.Date) {
		return k.Date.Before(other.Date)
	}
	return k.DishID < other.DishID
}

// MenuEntry is the inventory counter for one dish on one date within a scope.
type MenuEntry struct {
	ID        int64
	Key       EntryKey
	Available int
}

// NewMenuEntry validates and constructs an entry.
func NewMenuEntry(key EntryKey, available int) (*MenuEntry, error) {
	key = NewEntryKey(key.Scope, key.DishID, key.Date)
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if available < 0 {
		return nil, ErrNegativeAvailability
	}
	return &MenuEntry{Key: key, Available: available}, nil
}

// Reservation is a request to take quantity units from the entry at Key.
type Reservation struct {
	Key      EntryKey
	Quantity int
}
