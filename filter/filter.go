// Package filter implements pre-trade price and quantity validation:
// bounds, tick/step alignment, and mark-price multiplier bounds.
package filter

import (
	"github.com/shopspring/decimal"

	"perpsim/currency"
)

// Error reports which filter rejected a value and why, carrying the
// offending value for the caller to surface.
type Error struct {
	Filter string // "price" or "quantity"
	Reason string
	Value  decimal.Decimal
}

func (e *Error) Error() string {
	return e.Filter + " filter: " + e.Reason + " (value=" + e.Value.String() + ")"
}

// Price validates a limit price against bounds, tick size, and an optional
// multiplier band around the current mark price.
type Price struct {
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	TickSize       decimal.Decimal
	MultiplierUp   decimal.Decimal
	MultiplierDown decimal.Decimal
}

// Validate checks price against configured bounds and, when mid is
// non-nil, against the multiplier band mid*MultiplierDown..mid*MultiplierUp.
func (f Price) Validate(price currency.QuoteAmount, mid *currency.QuoteAmount) error {
	p := price.Decimal()
	if p.LessThanOrEqual(decimal.Zero) {
		return &Error{Filter: "price", Reason: "must be positive", Value: p}
	}
	if f.MinPrice != nil && p.LessThan(*f.MinPrice) {
		return &Error{Filter: "price", Reason: "below minimum", Value: p}
	}
	if f.MaxPrice != nil && p.GreaterThan(*f.MaxPrice) {
		return &Error{Filter: "price", Reason: "above maximum", Value: p}
	}
	if f.TickSize.IsPositive() {
		floor := decimal.Zero
		if f.MinPrice != nil {
			floor = *f.MinPrice
		}
		rem := p.Sub(floor).Mod(f.TickSize)
		if !rem.IsZero() {
			return &Error{Filter: "price", Reason: "not aligned to tick size", Value: p}
		}
	}
	if mid != nil {
		m := mid.Decimal()
		if f.MultiplierUp.IsPositive() && p.GreaterThan(m.Mul(f.MultiplierUp)) {
			return &Error{Filter: "price", Reason: "above mark-price multiplier band", Value: p}
		}
		if f.MultiplierDown.IsPositive() && p.LessThan(m.Mul(f.MultiplierDown)) {
			return &Error{Filter: "price", Reason: "below mark-price multiplier band", Value: p}
		}
	}
	return nil
}

// Quantity validates an order size against bounds and step size.
type Quantity struct {
	MinQty   *decimal.Decimal
	MaxQty   *decimal.Decimal
	StepSize decimal.Decimal
}

func (f Quantity) Validate(qty currency.BaseAmount) error {
	q := qty.Decimal()
	if q.LessThanOrEqual(decimal.Zero) {
		return &Error{Filter: "quantity", Reason: "must be positive", Value: q}
	}
	if f.MinQty != nil && q.LessThan(*f.MinQty) {
		return &Error{Filter: "quantity", Reason: "below minimum", Value: q}
	}
	if f.MaxQty != nil && q.GreaterThan(*f.MaxQty) {
		return &Error{Filter: "quantity", Reason: "above maximum", Value: q}
	}
	if f.StepSize.IsPositive() {
		floor := decimal.Zero
		if f.MinQty != nil {
			floor = *f.MinQty
		}
		rem := q.Sub(floor).Mod(f.StepSize)
		if !rem.IsZero() {
			return &Error{Filter: "quantity", Reason: "not aligned to step size", Value: q}
		}
	}
	return nil
}
