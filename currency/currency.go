// Package currency implements the fixed-decimal money types used
// throughout the exchange. Base and Quote are distinct, non-interchangeable
// tagged amounts backed by shopspring/decimal; the only way to move a value
// from one to the other is the explicit Convert method on a price.
package currency

import "github.com/shopspring/decimal"

// Tag identifies which side of the instrument an Amount is denominated in.
type Tag int

const (
	Base Tag = iota
	Quote
)

func (t Tag) String() string {
	if t == Base {
		return "base"
	}
	return "quote"
}

// Amount is implemented twice, once per tag, rather than as a single
// generic type: Go generics can't parametrize over a value like Tag, and a
// phantom-typed Amount[Base]/Amount[Quote] pair would still need the same
// per-tag Convert methods below. BaseAmount and QuoteAmount are the two
// concrete, non-interchangeable money types the rest of the module uses.
type BaseAmount struct{ v decimal.Decimal }

type QuoteAmount struct{ v decimal.Decimal }

func NewBase(v decimal.Decimal) BaseAmount { return BaseAmount{v: v} }
func NewQuote(v decimal.Decimal) QuoteAmount { return QuoteAmount{v: v} }

func BaseFromInt(i int64) BaseAmount { return BaseAmount{v: decimal.NewFromInt(i)} }
func QuoteFromInt(i int64) QuoteAmount { return QuoteAmount{v: decimal.NewFromInt(i)} }

func BaseFromFloat(f float64) BaseAmount { return BaseAmount{v: decimal.NewFromFloat(f)} }
func QuoteFromFloat(f float64) QuoteAmount { return QuoteAmount{v: decimal.NewFromFloat(f)} }

func (a BaseAmount) Decimal() decimal.Decimal { return a.v }
func (a QuoteAmount) Decimal() decimal.Decimal { return a.v }

func (a BaseAmount) String() string { return a.v.String() }
func (a QuoteAmount) String() string { return a.v.String() }

func (a BaseAmount) Add(b BaseAmount) BaseAmount { return BaseAmount{v: a.v.Add(b.v)} }
func (a BaseAmount) Sub(b BaseAmount) BaseAmount { return BaseAmount{v: a.v.Sub(b.v)} }
func (a BaseAmount) Neg() BaseAmount { return BaseAmount{v: a.v.Neg()} }

func (a QuoteAmount) Add(b QuoteAmount) QuoteAmount { return QuoteAmount{v: a.v.Add(b.v)} }
func (a QuoteAmount) Sub(b QuoteAmount) QuoteAmount { return QuoteAmount{v: a.v.Sub(b.v)} }
func (a QuoteAmount) Neg() QuoteAmount { return QuoteAmount{v: a.v.Neg()} }

func (a BaseAmount) IsPositive() bool { return a.v.IsPositive() }
func (a BaseAmount) IsNegative() bool { return a.v.IsNegative() }
func (a BaseAmount) IsZero() bool { return a.v.IsZero() }
func (a QuoteAmount) IsPositive() bool { return a.v.IsPositive() }
func (a QuoteAmount) IsNegative() bool { return a.v.IsNegative() }
func (a QuoteAmount) IsZero() bool { return a.v.IsZero() }

func (a BaseAmount) Abs() BaseAmount { return BaseAmount{v: a.v.Abs()} }
func (a QuoteAmount) Abs() QuoteAmount { return QuoteAmount{v: a.v.Abs()} }

func (a BaseAmount) GreaterThan(b BaseAmount) bool { return a.v.GreaterThan(b.v) }
func (a BaseAmount) GreaterThanOrEqual(b BaseAmount) bool { return a.v.GreaterThanOrEqual(b.v) }
func (a BaseAmount) LessThan(b BaseAmount) bool { return a.v.LessThan(b.v) }
func (a BaseAmount) LessThanOrEqual(b BaseAmount) bool { return a.v.LessThanOrEqual(b.v) }
func (a BaseAmount) Equal(b BaseAmount) bool { return a.v.Equal(b.v) }
func (a QuoteAmount) GreaterThan(b QuoteAmount) bool { return a.v.GreaterThan(b.v) }
func (a QuoteAmount) GreaterThanOrEqual(b QuoteAmount) bool { return a.v.GreaterThanOrEqual(b.v) }
func (a QuoteAmount) LessThan(b QuoteAmount) bool { return a.v.LessThan(b.v) }
func (a QuoteAmount) LessThanOrEqual(b QuoteAmount) bool { return a.v.LessThanOrEqual(b.v) }
func (a QuoteAmount) Equal(b QuoteAmount) bool { return a.v.Equal(b.v) }

// MulScalar scales an amount by a dimensionless decimal factor (e.g. a fee
// rate, a leverage reciprocal).
func (a BaseAmount) MulScalar(f decimal.Decimal) BaseAmount { return BaseAmount{v: a.v.Mul(f)} }
func (a QuoteAmount) MulScalar(f decimal.Decimal) QuoteAmount { return QuoteAmount{v: a.v.Mul(f)} }
func (a BaseAmount) DivScalar(f decimal.Decimal) BaseAmount { return BaseAmount{v: a.v.Div(f)} }
func (a QuoteAmount) DivScalar(f decimal.Decimal) QuoteAmount { return QuoteAmount{v: a.v.Div(f)} }

// Convert turns a Base quantity into a Quote notional at the given price:
// quote = base * price.
func (a BaseAmount) Convert(price QuoteAmount) QuoteAmount {
	return QuoteAmount{v: a.v.Mul(price.v)}
}

// Convert turns a Quote notional into a Base quantity at the given price:
// base = quote / price.
func (a QuoteAmount) Convert(price QuoteAmount) BaseAmount {
	return BaseAmount{v: a.v.Div(price.v)}
}

// MarginCurrency identifies which tagged amount a contract margins in.
// Quote-margined contracts are linear futures; Base-margined contracts are
// inverse futures. This selects the P&L formula in the position package.
type MarginCurrency int

const (
	MarginQuote MarginCurrency = iota // linear
	MarginBase                        // inverse
)
