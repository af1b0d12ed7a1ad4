package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is the header of a customer's order. The restaurant is derived from
// the meals on the order and is never supplied by the caller.
type Order struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	CustomerID   uuid.UUID   `json:"customer_id" db:"customer_id"`
	RestaurantID uuid.UUID   `json:"restaurant_id" db:"restaurant_id"`
	Status       OrderStatus `json:"status" db:"status"`
	TotalPrice   Money       `json:"total_price" db:"total_price"`
	TipAmount    Money       `json:"tip_amount" db:"tip_amount"`
	Discount     *Discount   `json:"discount,omitempty"`
	Version      int         `json:"-" db:"version"`
	Items        []OrderItem `json:"items,omitempty"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// Discount is the coupon applied to an order. It is stored across the
// discount_percentage and coupon_code columns.
type Discount struct {
	Percentage int     `json:"percentage"`
	CouponCode *string `json:"coupon_code"`
}

// DiscountPercentage returns the applied percentage, 0 when no coupon was used.
func (o *Order) DiscountPercentage() int {
	if o.Discount == nil {
		return 0
	}
	return o.Discount.Percentage
}

// CouponCode returns the applied coupon code, nil when no coupon was used.
func (o *Order) CouponCode() *string {
	if o.Discount == nil {
		return nil
	}
	return o.Discount.CouponCode
}

// OrderStatusSnapshot is the status-only view of an order.
type OrderStatusSnapshot struct {
	OrderID   uuid.UUID   `json:"order_id"`
	Status    OrderStatus `json:"status"`
	Version   int         `json:"-"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// StatusTransition describes a conditional status write. The write only
// applies while the stored order still has From and ExpectedVersion.
type StatusTransition struct {
	OrderID         uuid.UUID
	From            OrderStatus
	To              OrderStatus
	ExpectedVersion int
	ChangedBy       Role
	At              time.Time
}

// Page carries already-validated pagination parameters. Page is 1-based.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
