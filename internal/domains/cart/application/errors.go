package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/canteen-orders/internal/domains/cart/domain"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
)

var (
	// ErrInvalidInput signals the request violated a cart invariant.
	ErrInvalidInput = errors.New("invalid cart input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMissingSession) ||
		errors.Is(err, domain.ErrMissingOwner) ||
		errors.Is(err, domain.ErrInvalidDishID) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, domain.ErrLineLimit) ||
		errors.Is(err, domain.ErrNoTarget) ||
		errors.Is(err, domain.ErrEmptyCart) ||
		errors.Is(err, menudomain.ErrMissingDate) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
