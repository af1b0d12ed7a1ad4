package services

import (
	"dinedash/internal/common"
	"dinedash/internal/models"

	"github.com/shopspring/decimal"
)

// PriceBreakdown is the result of pricing an order. All amounts are in
// minor units.
type PriceBreakdown struct {
	Subtotal models.Money
	Discount models.Money
	Tip      models.Money
	Total    models.Money
}

var hundred = decimal.NewFromInt(100)

// CalculateTotals prices items with a percentage discount and a tip. The
// discount is rounded half-up to the cent; the total never goes below zero.
// Arithmetic is done in decimal and any amount beyond models.MaxMoney is a
// validation error.
func CalculateTotals(items []models.OrderItem, discountPercentage int, tip models.Money) (PriceBreakdown, error) {
	const op = "price order"

	tipAmount, err := models.MoneyFromMinorUnits(decimal.NewFromInt(int64(tip)))
	if err != nil {
		return PriceBreakdown{}, common.Validation(op, "tip: %s", err.Error())
	}

	sum := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromInt(int64(it.Price)).Mul(decimal.NewFromInt(int64(it.Quantity)))
		if _, err := models.MoneyFromMinorUnits(line); err != nil {
			return PriceBreakdown{}, common.Validation(op, "line for meal %s: %s", it.MealID, err.Error())
		}
		sum = sum.Add(line)
	}
	subtotal, err := models.MoneyFromMinorUnits(sum)
	if err != nil {
		return PriceBreakdown{}, common.Validation(op, "subtotal: %s", err.Error())
	}

	discountCents := sum.Mul(decimal.NewFromInt(int64(discountPercentage))).Div(hundred).Round(0)
	discount, err := models.MoneyFromMinorUnits(discountCents)
	if err != nil {
		return PriceBreakdown{}, common.Validation(op, "discount: %s", err.Error())
	}

	totalCents := sum.Sub(discountCents).Add(decimal.NewFromInt(int64(tipAmount)))
	if totalCents.IsNegative() {
		totalCents = decimal.Zero
	}
	total, err := models.MoneyFromMinorUnits(totalCents)
	if err != nil {
		return PriceBreakdown{}, common.Validation(op, "total: %s", err.Error())
	}

	return PriceBreakdown{Subtotal: subtotal, Discount: discount, Tip: tipAmount, Total: total}, nil
}
