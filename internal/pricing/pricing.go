// Package pricing computes cart subtotals, tax, discounts and totals.
// Every function is pure; callers decide when to round.
package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidDiscountKind = errors.New("invalid_discount_kind")
	ErrInvalidTaxPolicy    = errors.New("invalid_tax_policy")
)

var hundred = decimal.NewFromInt(100)

// Line is one cart entry at the price and tax rate it will be sold at.
type Line struct {
	Price    decimal.Decimal
	Quantity int
	TaxRate  decimal.Decimal
}

type DiscountKind string

const (
	DiscountNone       DiscountKind = "None"
	DiscountPercentage DiscountKind = "Percentage"
	DiscountFixed      DiscountKind = "Fixed"
)

// ParseDiscountKind accepts the labels shown at the till, case-insensitively.
// An empty string means no discount.
func ParseDiscountKind(raw string) (DiscountKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return DiscountNone, nil
	case "percentage", "percent":
		return DiscountPercentage, nil
	case "fixed", "fixed amount", "fixed_amount":
		return DiscountFixed, nil
	default:
		return "", ErrInvalidDiscountKind
	}
}

type TaxMode string

const (
	TaxModeFixed   TaxMode = "fixed"
	TaxModePerItem TaxMode = "per_item"
)

// TaxPolicy selects between one store-wide rate and each line's own rate.
type TaxPolicy struct {
	Mode TaxMode
	Rate decimal.Decimal
}

func FixedTax(rate decimal.Decimal) TaxPolicy {
	return TaxPolicy{Mode: TaxModeFixed, Rate: rate}
}

func PerItemTax() TaxPolicy {
	return TaxPolicy{Mode: TaxModePerItem}
}

// Breakdown is the priced result of a cart, every amount rounded to cents.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax_amount"`
	Discount decimal.Decimal `json:"discount_amount"`
	Total    decimal.Decimal `json:"total_amount"`
}

// Subtotal returns the sum of price times quantity. An empty cart is zero.
func Subtotal(cart []Line) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, line := range cart {
		if line.Quantity < 0 {
			return decimal.Zero, ErrInvalidQuantity
		}
		sum = sum.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return sum, nil
}

// Tax applies a percentage rate to the subtotal.
func Tax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Div(hundred)
}

// LineTax sums each line's own rate over its extended price.
func LineTax(cart []Line) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, line := range cart {
		if line.Quantity < 0 {
			return decimal.Zero, ErrInvalidQuantity
		}
		extended := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		sum = sum.Add(Tax(extended, line.TaxRate))
	}
	return sum, nil
}

// Discount is not clamped: a percentage above 100 or a fixed value above the
// subtotal is reflected in Total, which floors at zero.
func Discount(subtotal decimal.Decimal, kind DiscountKind, value decimal.Decimal) decimal.Decimal {
	switch kind {
	case DiscountPercentage:
		return subtotal.Mul(value).Div(hundred)
	case DiscountFixed:
		return value
	default:
		return decimal.Zero
	}
}

// Total is subtotal plus tax minus discount, never below zero.
func Total(subtotal, tax, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(tax).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Round brings an amount to two decimal places, half away from zero.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Quote prices a cart under the given tax policy. The total is derived from the
// rounded components so that it always reconciles with what is displayed.
func Quote(cart []Line, policy TaxPolicy, kind DiscountKind, value decimal.Decimal) (Breakdown, error) {
	subtotal, err := Subtotal(cart)
	if err != nil {
		return Breakdown{}, err
	}

	var tax decimal.Decimal
	switch policy.Mode {
	case TaxModeFixed, "":
		tax = Tax(subtotal, policy.Rate)
	case TaxModePerItem:
		tax, err = LineTax(cart)
		if err != nil {
			return Breakdown{}, err
		}
	default:
		return Breakdown{}, ErrInvalidTaxPolicy
	}

	subtotal = Round(subtotal)
	tax = Round(tax)
	discount := Round(Discount(subtotal, kind, value))

	return Breakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    Total(subtotal, tax, discount),
	}, nil
}
