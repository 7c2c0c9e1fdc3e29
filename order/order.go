// Package order implements the state-typed limit and market order types:
// orders progress New -> Pending -> {PartiallyFilled -> Pending} ->
// {Filled | Cancelled}, and fields that only make sense in a given state
// (the exchange-assigned id, the execution timestamp) are reachable only
// through accessors that report whether the order is currently in a state
// where that field is defined.
package order

import (
	"errors"

	"perpsim/currency"
)

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// State is the visible lifecycle stage of a LimitOrder.
type State int

const (
	StateNew State = iota
	StatePending
	StateFilled
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StatePending:
		return "pending"
	case StateFilled:
		return "filled"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Meta is assigned once the exchange accepts an order; it is undefined
// while the order is still State New.
type Meta struct {
	ID           ID
	TSReceivedNs int64
}

var (
	ErrAlreadyAccepted  = errors.New("order: already accepted")
	ErrNotAccepted      = errors.New("order: not yet accepted")
	ErrNotFilled        = errors.New("order: not filled")
	ErrAlreadyTerminal  = errors.New("order: already in a terminal state")
	ErrFillExceedsQty   = errors.New("order: fill quantity exceeds remaining quantity")
	ErrInvalidTotalQty  = errors.New("order: total quantity must be positive")
	ErrInvalidLimitPx   = errors.New("order: limit price must be positive")
)

// LimitOrder carries the fields described in spec §3. meta and
// tsExecutedNs are only meaningful once state has advanced past New /
// reached Filled respectively; use Meta() and TSExecuted() rather than
// reading them directly.
type LimitOrder struct {
	side        Side
	limitPrice  currency.QuoteAmount
	totalQty    currency.BaseAmount
	filledQty   currency.BaseAmount
	userOrderID *UserID
	repricing   RePricing

	state        State
	meta         Meta
	tsExecutedNs int64
}

// NewLimitOrder constructs an unaccepted (State New) limit order.
func NewLimitOrder(side Side, limitPrice currency.QuoteAmount, totalQty currency.BaseAmount, userOrderID *UserID, repricing RePricing) (*LimitOrder, error) {
	if !totalQty.IsPositive() {
		return nil, ErrInvalidTotalQty
	}
	if !limitPrice.IsPositive() {
		return nil, ErrInvalidLimitPx
	}
	return &LimitOrder{
		side:        side,
		limitPrice:  limitPrice,
		totalQty:    totalQty,
		userOrderID: userOrderID,
		repricing:   repricing,
		state:       StateNew,
	}, nil
}

func (o *LimitOrder) Side() Side { return o.side }
func (o *LimitOrder) LimitPrice() currency.QuoteAmount { return o.limitPrice }
func (o *LimitOrder) TotalQty() currency.BaseAmount { return o.totalQty }
func (o *LimitOrder) FilledQty() currency.BaseAmount { return o.filledQty }
func (o *LimitOrder) RemainingQty() currency.BaseAmount { return o.totalQty.Sub(o.filledQty) }
func (o *LimitOrder) State() State { return o.state }
func (o *LimitOrder) RepricingPolicy() RePricing { return o.repricing }

func (o *LimitOrder) UserOrderID() (UserID, bool) {
	if o.userOrderID == nil {
		return 0, false
	}
	return *o.userOrderID, true
}

// Meta returns the exchange-assigned id/timestamp. ok is false while the
// order is still State New.
func (o *LimitOrder) Meta() (Meta, bool) {
	if o.state == StateNew {
		return Meta{}, false
	}
	return o.meta, true
}

// TSExecuted returns the fill timestamp. ok is false unless State is Filled.
func (o *LimitOrder) TSExecuted() (int64, bool) {
	if o.state != StateFilled {
		return 0, false
	}
	return o.tsExecutedNs, true
}

// Accept transitions New -> Pending, assigning the exchange id and receipt
// timestamp.
func (o *LimitOrder) Accept(id ID, tsReceivedNs int64) error {
	if o.state != StateNew {
		return ErrAlreadyAccepted
	}
	o.state = StatePending
	o.meta = Meta{ID: id, TSReceivedNs: tsReceivedNs}
	return nil
}

// Fill records a (partial or full) fill, transitioning to Filled when
// filledQty reaches totalQty and otherwise remaining Pending.
func (o *LimitOrder) Fill(qty currency.BaseAmount, tsExecutedNs int64) error {
	if o.state != StatePending {
		return ErrNotAccepted
	}
	if qty.GreaterThan(o.RemainingQty()) {
		return ErrFillExceedsQty
	}
	o.filledQty = o.filledQty.Add(qty)
	if o.filledQty.Equal(o.totalQty) {
		o.state = StateFilled
		o.tsExecutedNs = tsExecutedNs
	}
	return nil
}

// Cancel transitions Pending -> Cancelled.
func (o *LimitOrder) Cancel() error {
	if o.state != StatePending {
		return ErrAlreadyTerminal
	}
	o.state = StateCancelled
	return nil
}

// IsActive reports whether the order still belongs in ActiveLimitOrders.
func (o *LimitOrder) IsActive() bool {
	return o.state == StatePending
}

// MarketOrder never rests: it is either fully matched against the touch
// immediately or rejected by the pre-trade checks (rate limit, quantity
// filter, margin).
type MarketOrder struct {
	side        Side
	qty         currency.BaseAmount
	userOrderID *UserID
}

func NewMarketOrder(side Side, qty currency.BaseAmount, userOrderID *UserID) (*MarketOrder, error) {
	if !qty.IsPositive() {
		return nil, ErrInvalidTotalQty
	}
	return &MarketOrder{side: side, qty: qty, userOrderID: userOrderID}, nil
}

func (o *MarketOrder) Side() Side { return o.side }
func (o *MarketOrder) Qty() currency.BaseAmount { return o.qty }
func (o *MarketOrder) UserOrderID() (UserID, bool) {
	if o.userOrderID == nil {
		return 0, false
	}
	return *o.userOrderID, true
}
