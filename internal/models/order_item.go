package models

import (
	"github.com/google/uuid"
)

// OrderItem is one line of an order. Price and Title are snapshots of the
// meal at creation time and never change afterwards.
type OrderItem struct {
	ID       uuid.UUID `json:"id" db:"id"`
	OrderID  uuid.UUID `json:"order_id" db:"order_id"`
	LineNo   int       `json:"line_no" db:"line_no"`
	MealID   uuid.UUID `json:"meal_id" db:"meal_id"`
	Title    string    `json:"title" db:"title"`
	Quantity int       `json:"quantity" db:"quantity"`
	Price    Money     `json:"price" db:"price"`
}

// LineTotal returns price multiplied by quantity.
func (i OrderItem) LineTotal() Money {
	return i.Price * Money(i.Quantity)
}
