// Package tracker defines the pluggable account-observer interface from
// spec §4.K/§6: a pure observer notified of market state, balances, and
// order lifecycle events, with zero effect on matching. The pattern is
// grounded on the teacher's internal/broker.Adapter + DisabledAdapter
// pair (an interface plus a no-op implementation callers can wire in with
// no other dependencies).
package tracker

import (
	"github.com/shopspring/decimal"

	"perpsim/marketupdate"
	"perpsim/order"
	"perpsim/position"
)

// Tracker is notified of engine activity. It must never influence
// matching outcomes; the exchange core treats tracker panics and errors
// as non-fatal (see exchange.Exchange.notifyTracker).
type Tracker interface {
	Update(state *marketupdate.MarketState)
	SampleUserBalances(b position.Balances, mid decimal.Decimal)
	LogLimitOrderSubmission(o *order.LimitOrder)
	LogLimitOrderCancellation(o *order.LimitOrder)
	LogLimitOrderFill(o *order.LimitOrder, fillQty decimal.Decimal)
	LogMarketOrderSubmission(o *order.MarketOrder)
	LogMarketOrderFill(o *order.MarketOrder, fillPrice, fillQty decimal.Decimal)
	LogTrade(side order.Side, price, qty decimal.Decimal)
}

// NoOp implements Tracker with no observable effect, matching the
// teacher's DisabledAdapter pattern for an unconfigured collaborator.
type NoOp struct{}

func (NoOp) Update(*marketupdate.MarketState) {}
func (NoOp) SampleUserBalances(position.Balances, decimal.Decimal) {}
func (NoOp) LogLimitOrderSubmission(*order.LimitOrder) {}
func (NoOp) LogLimitOrderCancellation(*order.LimitOrder) {}
func (NoOp) LogLimitOrderFill(*order.LimitOrder, decimal.Decimal) {}
func (NoOp) LogMarketOrderSubmission(*order.MarketOrder) {}
func (NoOp) LogMarketOrderFill(*order.MarketOrder, decimal.Decimal, decimal.Decimal) {}
func (NoOp) LogTrade(order.Side, decimal.Decimal, decimal.Decimal) {}
