package position

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Balances tracks the account's margin-currency balances per spec §3:
// available + position_margin + order_margin = wallet_balance, and
// wallet_balance = initial_deposit + Σrealized_pnl - Σfees. Amounts are
// carried as decimal.Decimal tagged only by convention (margin currency,
// either Base or Quote per the contract spec) rather than as a
// currency.BaseAmount or currency.QuoteAmount, since which concrete tag applies is a runtime contract
// property here, not a static one.
type Balances struct {
	Available      decimal.Decimal
	PositionMargin decimal.Decimal
	OrderMargin    decimal.Decimal
	TotalFeesPaid  decimal.Decimal
}

var (
	ErrInsufficientAvailable = errors.New("position: insufficient available balance")
	ErrNegativeBalance       = errors.New("position: balance component would go negative")
)

// WalletBalance returns available + position_margin + order_margin.
func (b Balances) WalletBalance() decimal.Decimal {
	return b.Available.Add(b.PositionMargin).Add(b.OrderMargin)
}

// ReserveOrderMargin moves amount from Available to OrderMargin, failing
// if Available would go negative.
func (b Balances) ReserveOrderMargin(amount decimal.Decimal) (Balances, error) {
	if b.Available.LessThan(amount) {
		return b, ErrInsufficientAvailable
	}
	b.Available = b.Available.Sub(amount)
	b.OrderMargin = b.OrderMargin.Add(amount)
	return b, nil
}

// ReleaseOrderMargin moves amount from OrderMargin back to Available, as
// on cancellation.
func (b Balances) ReleaseOrderMargin(amount decimal.Decimal) (Balances, error) {
	if b.OrderMargin.LessThan(amount) {
		return b, ErrNegativeBalance
	}
	b.OrderMargin = b.OrderMargin.Sub(amount)
	b.Available = b.Available.Add(amount)
	return b, nil
}

// ShiftOrderToPosition moves amount from OrderMargin to PositionMargin on
// a fill, or the reverse when amount is negative (position margin
// releasing back to order margin as a position shrinks).
func (b Balances) ShiftOrderToPosition(amount decimal.Decimal) (Balances, error) {
	if amount.IsPositive() {
		if b.OrderMargin.LessThan(amount) {
			return b, ErrNegativeBalance
		}
		b.OrderMargin = b.OrderMargin.Sub(amount)
		b.PositionMargin = b.PositionMargin.Add(amount)
		return b, nil
	}
	rel := amount.Neg()
	if b.PositionMargin.LessThan(rel) {
		return b, ErrNegativeBalance
	}
	b.PositionMargin = b.PositionMargin.Sub(rel)
	b.OrderMargin = b.OrderMargin.Add(rel)
	return b, nil
}

// ApplyFee deducts a fee from Available and accumulates it.
func (b Balances) ApplyFee(fee decimal.Decimal) (Balances, error) {
	if b.Available.LessThan(fee) {
		return b, ErrInsufficientAvailable
	}
	b.Available = b.Available.Sub(fee)
	b.TotalFeesPaid = b.TotalFeesPaid.Add(fee)
	return b, nil
}

// ApplyRealizedPnL credits (positive pnl) or debits (negative pnl)
// Available.
func (b Balances) ApplyRealizedPnL(pnl decimal.Decimal) (Balances, error) {
	if pnl.IsNegative() && b.Available.LessThan(pnl.Neg()) {
		return b, ErrInsufficientAvailable
	}
	b.Available = b.Available.Add(pnl)
	return b, nil
}

// RebalancePositionMargin moves PositionMargin to the given target,
// pulling the shortfall from Available or releasing the excess back to
// it. Called after every fill, since the required margin for an
// isolated-margin position tracks its current qty and entry price.
func (b Balances) RebalancePositionMargin(required decimal.Decimal) (Balances, error) {
	delta := required.Sub(b.PositionMargin)
	switch {
	case delta.IsPositive():
		if b.Available.LessThan(delta) {
			return b, ErrInsufficientAvailable
		}
		b.Available = b.Available.Sub(delta)
		b.PositionMargin = b.PositionMargin.Add(delta)
	case delta.IsNegative():
		release := delta.Neg()
		b.PositionMargin = b.PositionMargin.Sub(release)
		b.Available = b.Available.Add(release)
	}
	return b, nil
}
