package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/canteen-orders/internal/domains/users/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid user input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidChatID) ||
		errors.Is(err, domain.ErrInvalidRole) ||
		errors.Is(err, domain.ErrInvalidOffice) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
