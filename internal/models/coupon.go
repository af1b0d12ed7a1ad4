package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CouponStatus tells whether a coupon can currently be applied.
type CouponStatus string

const (
	CouponActive   CouponStatus = "active"
	CouponInactive CouponStatus = "inactive"
)

// Coupon is a percentage discount scoped to a single restaurant. Codes are
// unique per restaurant, not platform-wide.
type Coupon struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	Code         string       `json:"code" db:"code"`
	Percentage   int          `json:"percentage" db:"percentage"`
	RestaurantID uuid.UUID    `json:"restaurant_id" db:"restaurant_id"`
	Status       CouponStatus `json:"status" db:"active"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// IsActive reports whether the coupon may be applied.
func (c *Coupon) IsActive() bool {
	return c.Status == CouponActive
}

// NormalizeCouponCode trims and upper-cases a code so lookups are
// case-insensitive.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponOutcome distinguishes the three resolution results.
type CouponOutcome int

const (
	CouponNotFound CouponOutcome = iota
	CouponFoundInactive
	CouponFoundActive
)

func (o CouponOutcome) String() string {
	switch o {
	case CouponFoundInactive:
		return "inactive"
	case CouponFoundActive:
		return "active"
	default:
		return "not_found"
	}
}

// CouponResolution is the result of looking up a code for a restaurant.
// Percentage is only meaningful when Outcome is CouponFoundActive.
type CouponResolution struct {
	Outcome    CouponOutcome `json:"-"`
	Percentage int           `json:"percentage,omitempty"`
	Coupon     *Coupon       `json:"coupon,omitempty"`
}
