package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsufficientAvailability is matched by every InsufficientAvailabilityError.
var ErrInsufficientAvailability = errors.New("insufficient availability")

// Shortfall describes one dish that could not be reserved.
type Shortfall struct {
	DishID    int64 `json:"dishId"`
	Requested int   `json:"requested"`
	Available int   `json:"available"`
}

// InsufficientAvailabilityError lists every dish whose reservation failed.
type InsufficientAvailabilityError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientAvailabilityError) Error() string {
	if e == nil || len(e.Shortfalls) == 0 {
		return ErrInsufficientAvailability.Error()
	}
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("dish %d: requested %d, available %d", s.DishID, s.Requested, s.Available))
	}
	return ErrInsufficientAvailability.Error() + ": " + strings.Join(parts, "; ")
}

func (e *InsufficientAvailabilityError) Is(target error) bool {
	return target == ErrInsufficientAvailability
}

// NewInsufficientAvailability builds the error for a single dish.
func NewInsufficientAvailability(dishID int64, requested, available int) *InsufficientAvailabilityError {
	return &InsufficientAvailabilityError{Shortfalls: []Shortfall{{DishID: dishID, Requested: requested, Available: available}}}
}
