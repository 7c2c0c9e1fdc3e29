// Package marketupdate implements the three external market-update
// variants (spec §3/§4.D/§4.I): best-bid-ask quotes, taker trades, and
// candles, each able to validate itself against a price filter, report
// whether it fills a given resting limit order, and report the new touch
// (bid/ask) it establishes.
package marketupdate

import (
	"errors"

	"perpsim/currency"
	"perpsim/filter"
	"perpsim/order"
)

var ErrBidNotBelowAsk = errors.New("marketupdate: bid must be strictly below ask")

// Update is the discriminated union of market-update variants.
type Update interface {
	// Validate checks the update's own prices against the price filter
	// and any variant-specific invariants (e.g. low <= min(bid, ask)).
	Validate(pf filter.Price) error
	// LimitOrderFilled reports whether, and by how much, this update
	// fills the given resting order. Called once per candidate order in
	// price-time priority; implementations that have a finite quantity
	// budget (Trade) track how much of that budget remains consumed
	// across calls.
	LimitOrderFilled(o *order.LimitOrder) (currency.BaseAmount, bool)
	// Touch returns the new (bid, ask) this update establishes, given
	// the previous touch.
	Touch(prevBid, prevAsk currency.QuoteAmount) (bid, ask currency.QuoteAmount)
}

// Bba is a best-bid-ask quote update. It never fills a resting order on
// its own.
type Bba struct {
	Bid currency.QuoteAmount
	Ask currency.QuoteAmount
}

func (u Bba) Validate(pf filter.Price) error {
	if !u.Bid.LessThan(u.Ask) {
		return ErrBidNotBelowAsk
	}
	if err := pf.Validate(u.Bid, nil); err != nil {
		return err
	}
	return pf.Validate(u.Ask, nil)
}

func (u Bba) LimitOrderFilled(o *order.LimitOrder) (currency.BaseAmount, bool) {
	return currency.BaseAmount{}, false
}

func (u Bba) Touch(prevBid, prevAsk currency.QuoteAmount) (currency.QuoteAmount, currency.QuoteAmount) {
	return u.Bid, u.Ask
}

// Trade is a taker trade update. It fills resting orders on the opposite
// side of AggressorSide whose limit price is crossed, consuming Qty in
// price-time priority and partially filling the last order it touches.
// A Trade's own side is the aggressor; a Trade never itself updates the
// touch.
type Trade struct {
	Price         currency.QuoteAmount
	Qty           currency.BaseAmount
	AggressorSide order.Side

	consumed currency.BaseAmount
}

func (u *Trade) Validate(pf filter.Price) error {
	if !u.Qty.IsPositive() {
		return errors.New("marketupdate: trade quantity must be positive")
	}
	return pf.Validate(u.Price, nil)
}

func (u *Trade) LimitOrderFilled(o *order.LimitOrder) (currency.BaseAmount, bool) {
	// Only orders on the opposite side of the aggressor are eligible:
	// the aggressor took liquidity from the resting opposite side.
	makerSide := order.Buy
	if u.AggressorSide == order.Buy {
		makerSide = order.Sell
	}
	if o.Side() != makerSide {
		return currency.BaseAmount{}, false
	}
	switch o.Side() {
	case order.Buy:
		if u.Price.GreaterThan(o.LimitPrice()) {
			return currency.BaseAmount{}, false
		}
	case order.Sell:
		if u.Price.LessThan(o.LimitPrice()) {
			return currency.BaseAmount{}, false
		}
	}
	remainingBudget := u.Qty.Sub(u.consumed)
	if !remainingBudget.IsPositive() {
		return currency.BaseAmount{}, false
	}
	fill := o.RemainingQty()
	if fill.GreaterThan(remainingBudget) {
		fill = remainingBudget
	}
	if !fill.IsPositive() {
		return currency.BaseAmount{}, false
	}
	u.consumed = u.consumed.Add(fill)
	return fill, true
}

func (u *Trade) Touch(prevBid, prevAsk currency.QuoteAmount) (currency.QuoteAmount, currency.QuoteAmount) {
	return prevBid, prevAsk
}

// Candle is an OHLC bar update. Candles are a lossy proxy for trade flow:
// any crossed order fills by its full remaining quantity, regardless of
// candle volume.
type Candle struct {
	Bid  currency.QuoteAmount
	Ask  currency.QuoteAmount
	Low  currency.QuoteAmount
	High currency.QuoteAmount
}

func (u Candle) Validate(pf filter.Price) error {
	if !u.Bid.LessThan(u.Ask) {
		return ErrBidNotBelowAsk
	}
	for _, p := range []currency.QuoteAmount{u.Bid, u.Ask, u.Low, u.High} {
		if err := pf.Validate(p, nil); err != nil {
			return err
		}
	}
	minTouch := u.Bid
	if u.Ask.LessThan(minTouch) {
		minTouch = u.Ask
	}
	maxTouch := u.Bid
	if u.Ask.GreaterThan(maxTouch) {
		maxTouch = u.Ask
	}
	if u.Low.GreaterThan(minTouch) {
		return errors.New("marketupdate: candle low must be <= min(bid, ask)")
	}
	if u.High.LessThan(maxTouch) {
		return errors.New("marketupdate: candle high must be >= max(bid, ask)")
	}
	return nil
}

func (u Candle) LimitOrderFilled(o *order.LimitOrder) (currency.BaseAmount, bool) {
	switch o.Side() {
	case order.Buy:
		if u.Low.LessThan(o.LimitPrice()) {
			return o.RemainingQty(), true
		}
	case order.Sell:
		if u.High.GreaterThan(o.LimitPrice()) {
			return o.RemainingQty(), true
		}
	}
	return currency.BaseAmount{}, false
}

func (u Candle) Touch(prevBid, prevAsk currency.QuoteAmount) (currency.QuoteAmount, currency.QuoteAmount) {
	return u.Bid, u.Ask
}
