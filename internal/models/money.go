package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor units (cents).
type Money int64

// MaxMoney bounds every amount the service accepts or computes: one trillion
// in major units.
const MaxMoney Money = 100_000_000_000_000

var maxMoneyDecimal = decimal.NewFromInt(int64(MaxMoney))

// ErrAmountOutOfRange is returned for amounts whose magnitude exceeds MaxMoney.
var ErrAmountOutOfRange = errors.New("amount out of range")

// MoneyFromDecimal converts a major-unit amount into Money, rounding half-up
// to the nearest cent.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	return MoneyFromMinorUnits(d.Shift(2))
}

// MoneyFromMinorUnits rounds a cent amount half-up and checks it against
// MaxMoney.
func MoneyFromMinorUnits(cents decimal.Decimal) (Money, error) {
	cents = cents.Round(0)
	if cents.Abs().GreaterThan(maxMoneyDecimal) {
		return 0, fmt.Errorf("%w: %s cents", ErrAmountOutOfRange, cents.String())
	}
	return Money(cents.IntPart()), nil
}

// ParseMoney parses a major-unit amount such as "3.50".
func ParseMoney(raw string) (Money, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	m, err := MoneyFromDecimal(d)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return m, nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as a fixed two-decimal JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	v, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
