package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyDishName = errors.New("dish name is required")
	ErrInvalidPrice  = errors.New("dish price cannot be negative")
)

// Dish is a catalogue item. Orders snapshot its price at commit time.
type Dish struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Available   bool
}

// NewDish builds a dish that is offered by default.
func NewDish(id int64, name string, price decimal.Decimal) (*Dish, error) {
	dish := &Dish{ID: id, Name: name, Price: price, Available: true}
	if err := dish.Validate(); err != nil {
		return nil, err
	}
	return dish, nil
}

// Validate trims the name and checks the price.
func (d *Dish) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return ErrEmptyDishName
	}
	if d.Price.IsNegative() {
		return ErrInvalidPrice
	}
	d.Category = strings.TrimSpace(d.Category)
	return nil
}

// MenuItem pairs a dish with the portions left for a given scope and date.
type MenuItem struct {
	Dish      Dish
	Available int
}
