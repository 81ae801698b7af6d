package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
)

var (
	// ErrInvalidInput signals the request violated a deadline invariant.
	ErrInvalidInput = errors.New("invalid deadline input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMissingDate) ||
		errors.Is(err, domain.ErrInvalidCutoff) ||
		errors.Is(err, domain.ErrInvalidClock) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
