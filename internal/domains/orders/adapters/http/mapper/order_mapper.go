package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/canteen-orders/internal/domains/orders/domain"
)

const dateLayout = "2006-01-02"

// Item is an order line as returned to clients.
type Item struct {
	ID       int64           `json:"id"`
	DishID   int64           `json:"dishId"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Order represents the transport-layer shape of an order.
type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	CafeID    *int64          `json:"cafeId,omitempty"`
	OfficeID  *int64          `json:"officeId,omitempty"`
	Date      string          `json:"date"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Items     []Item          `json:"items"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// AddItemRequest appends a dish to a pending order.
type AddItemRequest struct {
	DishID   int64 `json:"dishId" binding:"required"`
	Quantity int   `json:"quantity" binding:"required"`
}

// StatusRequest moves an order to another status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{Items: []Item{}}
	}
	out := Order{
		ID:        order.ID,
		UserID:    order.UserID,
		CafeID:    order.CafeID,
		OfficeID:  order.OfficeID,
		Date:      order.OrderDate.Format(dateLayout),
		Status:    string(order.Status),
		Total:     order.Total,
		Items:     make([]Item, 0, len(order.Items)),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, Item{
			ID:       item.ID,
			DishID:   item.DishID,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal(),
		})
	}
	return out
}

func FromDomainOrders(orders []*domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}
