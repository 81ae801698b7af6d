package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/canteen-orders/internal/domains/cart/domain"
)

const dateLayout = "2006-01-02"

// Line is one cart line on the wire.
type Line struct {
	DishID   int64           `json:"dishId"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Cart is the HTTP representation of a session cart with its running totals.
type Cart struct {
	SessionID string          `json:"sessionId"`
	Date      string          `json:"date,omitempty"`
	CafeID    *int64          `json:"cafeId,omitempty"`
	OfficeID  *int64          `json:"officeId,omitempty"`
	Lines     []Line          `json:"lines"`
	LineCount int             `json:"lineCount"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

// TargetRequest points a cart at a date and, optionally, a cafe and office.
type TargetRequest struct {
	Date     string `json:"date" binding:"required"`
	CafeID   *int64 `json:"cafeId"`
	OfficeID *int64 `json:"officeId"`
}

// QuantityRequest sets a line to an absolute quantity.
type QuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// StepRequest moves a line up or down. A missing delta counts as one.
type StepRequest struct {
	Delta int `json:"delta"`
}

func (r StepRequest) Step() int {
	if r.Delta == 0 {
		return 1
	}
	return r.Delta
}

func FromDomainCart(cart *domain.Cart) Cart {
	if cart == nil {
		return Cart{Lines: []Line{}}
	}
	out := Cart{
		SessionID: cart.SessionID,
		CafeID:    cart.CafeID,
		OfficeID:  cart.OfficeID,
		Lines:     make([]Line, 0, len(cart.Lines)),
	}
	if cart.HasTarget() {
		out.Date = cart.Date.Format(dateLayout)
	}
	if !cart.UpdatedAt.IsZero() {
		updated := cart.UpdatedAt
		out.UpdatedAt = &updated
	}
	for _, line := range cart.Lines {
		out.Lines = append(out.Lines, Line{
			DishID:   line.DishID,
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price,
			Subtotal: line.Subtotal(),
		})
	}
	out.LineCount, out.Total = cart.Totals()
	return out
}
