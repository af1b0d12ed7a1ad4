package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusHistory is one append-only entry of an order's status log.
type OrderStatusHistory struct {
	ID        int64       `json:"id" db:"id"`
	OrderID   uuid.UUID   `json:"order_id" db:"order_id"`
	Status    OrderStatus `json:"status" db:"status"`
	ChangedBy Role        `json:"changed_by" db:"changed_by"`
	ChangedAt time.Time   `json:"changed_at" db:"changed_at"`
}
