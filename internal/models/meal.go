package models

import "github.com/google/uuid"

// Meal is the catalog entry owned by the restaurant service. Orders only read
// it to snapshot price and title.
type Meal struct {
	ID           uuid.UUID `json:"id" db:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id" db:"restaurant_id"`
	Title        string    `json:"title" db:"title"`
	Price        Money     `json:"price" db:"price"`
}
