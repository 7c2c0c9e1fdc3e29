// Package risk implements the isolated-margin risk engine from spec
// §4.G: initial margin sizing, pre-trade available-balance sufficiency,
// and the maintenance-margin breach check that triggers liquidation.
package risk

import (
	"github.com/shopspring/decimal"

	"perpsim/errs"
	"perpsim/order"
	"perpsim/position"
)

// Engine holds the contract's leverage and maintenance-margin fraction.
// Isolated margin is the only model implemented, matching the single
// reference risk engine in the retrieved source material.
type Engine struct {
	Leverage                 decimal.Decimal // >= 1
	MaintenanceMarginFraction decimal.Decimal
}

// InitMarginRequirement is 1/leverage.
func (e Engine) InitMarginRequirement() decimal.Decimal {
	return decimal.NewFromInt(1).Div(e.Leverage)
}

// InitialMargin returns the margin required to open qty at price p:
// |q| * p * init_margin_req.
func (e Engine) InitialMargin(qty decimal.Decimal, price decimal.Decimal) decimal.Decimal {
	return qty.Abs().Mul(price).Mul(e.InitMarginRequirement())
}

// OrderMarginDelta returns the new margin a proposed order of qty at
// price on side actually consumes against pos, per spec §4.G: the
// portion that reduces or closes an existing opposite-side position
// releases margin first (and consumes none of its own), so only the
// excess beyond the position's current size is sized at InitialMargin.
// An order on the same side as pos, or against a neutral position,
// consumes the full InitialMargin of qty.
func (e Engine) OrderMarginDelta(pos position.Position, side order.Side, qty, price decimal.Decimal) decimal.Decimal {
	posSigned := decimal.Zero
	switch pos.Kind() {
	case position.Long:
		posSigned = pos.Qty().Decimal()
	case position.Short:
		posSigned = pos.Qty().Decimal().Neg()
	}

	opposite := (side == order.Buy && posSigned.IsNegative()) || (side == order.Sell && posSigned.IsPositive())
	if !opposite {
		return e.InitialMargin(qty, price)
	}

	reduceQty := posSigned.Abs()
	if qty.LessThan(reduceQty) {
		reduceQty = qty
	}
	excessQty := qty.Sub(reduceQty)
	if !excessQty.IsPositive() {
		return decimal.Zero
	}
	return e.InitialMargin(excessQty, price)
}

// CheckAvailable requires available >= delta, the margin a new order or
// order increase would consume.
func (e Engine) CheckAvailable(available, delta decimal.Decimal) error {
	if available.LessThan(delta) {
		return errs.NotEnoughAvailableBalance(delta, available)
	}
	return nil
}

// CheckMaintenanceMargin requires position_margin + upnl >=
// |qty|*mark*maintenance_margin_fraction; otherwise the position must be
// liquidated.
func (e Engine) CheckMaintenanceMargin(positionMargin, upnl decimal.Decimal, pos position.Position, mark decimal.Decimal) error {
	if pos.IsNeutral() {
		return nil
	}
	required := pos.Qty().Decimal().Abs().Mul(mark).Mul(e.MaintenanceMarginFraction)
	if positionMargin.Add(upnl).LessThan(required) {
		return errs.Liquidate("position margin plus unrealized pnl below maintenance requirement")
	}
	return nil
}

// UnrealizedPnL computes mark-to-market P&L on the open position at mid,
// using the linear formula (quote-margined contracts). Inverse contracts
// are out of scope for maintenance-margin checks in this engine: the
// retrieved risk-engine source only specifies the isolated-margin,
// linear-futures path.
func UnrealizedPnL(pos position.Position, mid decimal.Decimal) decimal.Decimal {
	if pos.IsNeutral() {
		return decimal.Zero
	}
	diff := mid.Sub(pos.EntryPrice().Decimal())
	if pos.Kind() == position.Short {
		diff = diff.Neg()
	}
	return pos.Qty().Decimal().Mul(diff)
}
