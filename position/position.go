// Package position implements the Neutral|Long|Short position model and
// the fill-processing transition rules in spec §4.E: same-side adds
// weighted-average the entry price, opposite-side fills realize P&L
// (reducing, closing, or flipping the position), using the linear or
// inverse formula selected by the contract's margin currency.
package position

import (
	"errors"

	"github.com/shopspring/decimal"

	"perpsim/currency"
	"perpsim/order"
)

type Kind int

const (
	Neutral Kind = iota
	Long
	Short
)

func (k Kind) String() string {
	switch k {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "neutral"
	}
}

// Position is Neutral, or Long/Short with a strictly positive qty and
// strictly positive entry price.
type Position struct {
	kind       Kind
	qty        currency.BaseAmount
	entryPrice currency.QuoteAmount
}

func NewNeutral() Position { return Position{kind: Neutral} }

func (p Position) Kind() Kind { return p.kind }
func (p Position) Qty() currency.BaseAmount { return p.qty }
func (p Position) EntryPrice() currency.QuoteAmount { return p.entryPrice }
func (p Position) IsNeutral() bool { return p.kind == Neutral }

// signedQty returns qty positive for Long, negative for Short, zero for
// Neutral -- used internally for same-side/opposite-side comparisons.
func (p Position) signedQty() decimal.Decimal {
	switch p.kind {
	case Long:
		return p.qty.Decimal()
	case Short:
		return p.qty.Decimal().Neg()
	default:
		return decimal.Zero
	}
}

var ErrInvalidFillQty = errors.New("position: fill quantity must be positive")

// ChangeResult reports the outcome of one fill's effect on a position.
type ChangeResult struct {
	NewPosition Position
	RealizedPnL decimal.Decimal // in margin currency
}

// Change applies a fill of fillQty at fillPrice on the given side,
// following spec §4.E's five transition cases. marginCur selects the P&L
// formula: MarginQuote -> linear (qty*(exit-entry)); MarginBase ->
// inverse (qty*(1/entry - 1/exit)).
func (p Position) Change(fillQty currency.BaseAmount, fillPrice currency.QuoteAmount, side order.Side, marginCur currency.MarginCurrency) (ChangeResult, error) {
	if !fillQty.IsPositive() {
		return ChangeResult{}, ErrInvalidFillQty
	}
	delta := fillQty.Decimal()
	if side == order.Sell {
		delta = delta.Neg()
	}
	posSigned := p.signedQty()
	newSigned := posSigned.Add(delta)

	sameDirection := posSigned.IsZero() || posSigned.Sign() == delta.Sign()
	if sameDirection {
		var newEntry decimal.Decimal
		if posSigned.IsZero() {
			newEntry = fillPrice.Decimal()
		} else {
			oldAbs := posSigned.Abs()
			newEntry = oldAbs.Mul(p.entryPrice.Decimal()).Add(fillQty.Decimal().Mul(fillPrice.Decimal())).Div(oldAbs.Add(fillQty.Decimal()))
		}
		return ChangeResult{
			NewPosition: fromSigned(newSigned, currency.NewQuote(newEntry)),
			RealizedPnL: decimal.Zero,
		}, nil
	}

	// Opposite direction: reduces, closes, or flips.
	reduceQty := posSigned.Abs()
	if fillQty.Decimal().LessThan(reduceQty) {
		reduceQty = fillQty.Decimal()
	}
	pnl := realizedPnL(p.kind, currency.NewBase(reduceQty), p.entryPrice, fillPrice, marginCur)

	if newSigned.IsZero() {
		return ChangeResult{NewPosition: NewNeutral(), RealizedPnL: pnl}, nil
	}
	if newSigned.Sign() == posSigned.Sign() {
		// partial reduce: same side, entry unchanged.
		return ChangeResult{NewPosition: fromSigned(newSigned, p.entryPrice), RealizedPnL: pnl}, nil
	}
	// flip: residual opens the opposite side at the fill price.
	return ChangeResult{NewPosition: fromSigned(newSigned, fillPrice), RealizedPnL: pnl}, nil
}

func fromSigned(signed decimal.Decimal, entry currency.QuoteAmount) Position {
	switch {
	case signed.IsZero():
		return NewNeutral()
	case signed.IsPositive():
		return Position{kind: Long, qty: currency.NewBase(signed), entryPrice: entry}
	default:
		return Position{kind: Short, qty: currency.NewBase(signed.Neg()), entryPrice: entry}
	}
}

// realizedPnL computes P&L on reduceQty of a position in the given
// original kind, going from entry to exit.
func realizedPnL(kind Kind, reduceQty currency.BaseAmount, entry, exit currency.QuoteAmount, marginCur currency.MarginCurrency) decimal.Decimal {
	q := reduceQty.Decimal()
	e := entry.Decimal()
	x := exit.Decimal()
	sign := decimal.NewFromInt(1)
	if kind == Short {
		sign = decimal.NewFromInt(-1)
	}
	switch marginCur {
	case currency.MarginBase:
		// inverse: qty * (1/entry - 1/exit), signed for the position side.
		inv := decimal.NewFromInt(1).Div(e).Sub(decimal.NewFromInt(1).Div(x))
		return q.Mul(inv).Mul(sign)
	default:
		// linear: qty * (exit - entry), signed for the position side.
		return q.Mul(x.Sub(e)).Mul(sign)
	}
}
