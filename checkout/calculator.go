// Package checkout turns a cart and a points request into a payable amount and
// records the order once the gateway reports the payment as succeeded.
package checkout

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrBelowMinimumCharge = errors.New("payable amount below minimum charge")

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Calculator does the money arithmetic. All amounts are in major currency units.
type Calculator struct {
	PointValue decimal.Decimal
	MinCharge  decimal.Decimal
}

func NewCalculator(pointValue, minCharge float64) Calculator {
	return Calculator{
		PointValue: decimal.NewFromFloat(pointValue),
		MinCharge:  decimal.NewFromFloat(minCharge),
	}
}

// UnitPrice applies the product's offer percentage to its list price.
func UnitPrice(price, offerPercent float64) decimal.Decimal {
	off := decimal.NewFromFloat(offerPercent).Div(hundred)
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(1).Sub(off))
}

// Subtotal sums unit*qty over the lines and rounds half-up to cents.
func Subtotal(lines []PricedLine) decimal.Decimal {
	sum := zero
	for _, l := range lines {
		sum = sum.Add(l.Unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(2)
}

// Quote is the outcome of applying points to a subtotal.
type Quote struct {
	Subtotal      decimal.Decimal
	PointsApplied int64
	Discount      decimal.Decimal
	Payable       decimal.Decimal
}

// MaxRedeemable is the largest point count that keeps the payable at or above MinCharge.
func (c Calculator) MaxRedeemable(subtotal decimal.Decimal) int64 {
	return maxRedeemable(subtotal, c.MinCharge, c.PointValue)
}

func maxRedeemable(subtotal, minCharge, pointValue decimal.Decimal) int64 {
	if !pointValue.IsPositive() {
		return 0
	}
	headroom := decimal.Max(subtotal.Sub(minCharge), zero)
	return headroom.Div(pointValue).Floor().IntPart()
}

// Quote clamps requested points by the balance and the minimum charge and
// prices the discount. It fails when the payable would still be below MinCharge.
func (c Calculator) Quote(subtotal decimal.Decimal, requested, balance int64) (Quote, error) {
	applied := min(max(requested, 0), max(balance, 0), c.MaxRedeemable(subtotal))
	q := c.price(subtotal, applied, c.PointValue)
	if q.Payable.LessThan(c.MinCharge) {
		return q, fmt.Errorf("%w: payment amount must be at least $%s", ErrBelowMinimumCharge, c.MinCharge.StringFixed(2))
	}
	return q, nil
}

// Reconcile re-derives the redeemed points recorded at intent time against a
// freshly computed subtotal. The balance is not consulted again.
func (c Calculator) Reconcile(subtotal decimal.Decimal, recorded int64, pointValue decimal.Decimal) Quote {
	if !pointValue.IsPositive() {
		pointValue = c.PointValue
	}
	applied := min(max(recorded, 0), maxRedeemable(subtotal, c.MinCharge, pointValue))
	return c.price(subtotal, applied, pointValue)
}

func (c Calculator) price(subtotal decimal.Decimal, applied int64, pointValue decimal.Decimal) Quote {
	discount := decimal.Min(subtotal, decimal.NewFromInt(applied).Mul(pointValue).Round(2))
	return Quote{
		Subtotal:      subtotal,
		PointsApplied: applied,
		Discount:      discount,
		Payable:       decimal.Max(subtotal.Sub(discount), zero),
	}
}

// MinorUnits converts a major-unit amount to cents.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// PointsEarned awards one point per whole currency unit paid.
func PointsEarned(payable decimal.Decimal) int64 {
	return payable.Floor().IntPart()
}
