package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	"github.com/Apurer/canteen-orders/internal/domains/menu/ports"
)

// DateLayout is the calendar-day format used on the wire.
const DateLayout = "2006-01-02"

// Dish is the HTTP representation of a catalogue dish.
type Dish struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"available"`
}

// MutationDish captures create/update payloads. A missing available flag keeps the dish on offer.
type MutationDish struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Available   *bool           `json:"available"`
}

// MenuItem is a dish with its remaining portions.
type MenuItem struct {
	Dish
	Remaining int `json:"remaining"`
}

// Menu is the response of a menu lookup.
type Menu struct {
	Date   string     `json:"date"`
	CafeID int64      `json:"cafeId,omitempty"`
	Items  []MenuItem `json:"items"`
}

// StockLine sets the portions of one dish.
type StockLine struct {
	DishID   int64 `json:"dishId" binding:"required"`
	Quantity int   `json:"quantity"`
}

// LoadMenuRequest replaces the stock of the listed dishes for a date.
type LoadMenuRequest struct {
	Date   string      `json:"date" binding:"required"`
	CafeID *int64      `json:"cafeId"`
	Lines  []StockLine `json:"lines" binding:"required"`
}

// MenuEntry is a ledger row as seen by administrators.
type MenuEntry struct {
	ID        int64  `json:"id"`
	DishID    int64  `json:"dishId"`
	Date      string `json:"date"`
	CafeID    int64  `json:"cafeId,omitempty"`
	Available int    `json:"available"`
}

func FromDomainDish(dish *domain.Dish) Dish {
	if dish == nil {
		return Dish{}
	}
	return Dish{
		ID:          dish.ID,
		Name:        dish.Name,
		Description: dish.Description,
		Category:    dish.Category,
		Price:       dish.Price,
		Available:   dish.Available,
	}
}

func FromDomainDishes(dishes []*domain.Dish) []Dish {
	result := make([]Dish, 0, len(dishes))
	for _, dish := range dishes {
		result = append(result, FromDomainDish(dish))
	}
	return result
}

// ToDomainDish builds a dish for id from a mutation payload.
func ToDomainDish(id int64, payload MutationDish) *domain.Dish {
	dish := &domain.Dish{
		ID:          id,
		Name:        payload.Name,
		Description: payload.Description,
		Category:    payload.Category,
		Price:       payload.Price,
		Available:   true,
	}
	if payload.Available != nil {
		dish.Available = *payload.Available
	}
	return dish
}

func FromDomainMenu(scope domain.Scope, items []domain.MenuItem, date string) Menu {
	menu := Menu{Date: date, CafeID: int64(scope), Items: make([]MenuItem, 0, len(items))}
	for i := range items {
		menu.Items = append(menu.Items, MenuItem{Dish: FromDomainDish(&items[i].Dish), Remaining: items[i].Available})
	}
	return menu
}

func ToStockLines(lines []StockLine) []ports.StockLine {
	result := make([]ports.StockLine, 0, len(lines))
	for _, line := range lines {
		result = append(result, ports.StockLine{DishID: line.DishID, Quantity: line.Quantity})
	}
	return result
}

func FromDomainEntries(entries []*domain.MenuEntry) []MenuEntry {
	result := make([]MenuEntry, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		result = append(result, MenuEntry{
			ID:        entry.ID,
			DishID:    entry.Key.DishID,
			Date:      entry.Key.Date.Format(DateLayout),
			CafeID:    int64(entry.Key.Scope),
			Available: entry.Available,
		})
	}
	return result
}
