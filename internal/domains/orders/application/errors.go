package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	"github.com/Apurer/canteen-orders/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated an order invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrForbidden signals the actor may not perform the operation.
	ErrForbidden = errors.New("operation not permitted")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidUser) ||
		errors.Is(err, domain.ErrMissingDate) ||
		errors.Is(err, domain.ErrEmptyOrder) ||
		errors.Is(err, domain.ErrInvalidDishID) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrNotEditable) ||
		errors.Is(err, domain.ErrNotCancellable) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrItemNotFound) {
		return fmt.Errorf("%w: %w", ports.ErrNotFound, err)
	}
	return err
}
