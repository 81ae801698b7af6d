package domain

import (
	"errors"
	"strings"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var ErrInvalidStatus = errors.New("order status is invalid")

// Effect is the inventory consequence of a status change.
type Effect int

const (
	EffectNone Effect = iota
	// EffectRelease returns every item's quantity to the ledger.
	EffectRelease
	// EffectReserve takes every item's quantity from the ledger again.
	EffectReserve
)

func (e Effect) String() string {
	switch e {
	case EffectRelease:
		return "release"
	case EffectReserve:
		return "reserve"
	default:
		return "none"
	}
}

// ParseStatus accepts status names case-insensitively.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Transition is the single authority on status changes. Any known status may
// move to any other; entering CANCELLED releases inventory and leaving it
// reserves inventory again.
func Transition(from, to Status) (Effect, error) {
	if !from.Valid() || !to.Valid() {
		return EffectNone, ErrInvalidStatus
	}
	switch {
	case from == to:
		return EffectNone, nil
	case to == StatusCancelled:
		return EffectRelease, nil
	case from == StatusCancelled:
		return EffectReserve, nil
	default:
		return EffectNone, nil
	}
}
