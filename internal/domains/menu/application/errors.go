package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/canteen-orders/internal/domains/menu/domain"
)

var (
	// ErrInvalidInput signals the request violated a menu invariant.
	ErrInvalidInput = errors.New("invalid menu input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidDishID) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativeAvailability) ||
		errors.Is(err, domain.ErrMissingDate) ||
		errors.Is(err, domain.ErrEmptyDishName) ||
		errors.Is(err, domain.ErrInvalidPrice) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
