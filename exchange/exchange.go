// Package exchange implements the matching/account orchestration core
// described in spec §4.J: order acceptance/cancellation/amendment,
// advancing on market updates, matching resting orders, settling fills
// into the ledger and position, and emitting a deterministic fill-event
// sequence. This is the glue component; it is grounded on the teacher's
// internal/matching/engine.go Match loop (ListMatchingOrders -> per-maker
// quantity resolution -> applyLedger/applyTrade/applyOrderFill ->
// statusFromRemaining), reworked from a Postgres-transaction-scoped async
// loop into a single-threaded, synchronous, in-memory core.
package exchange

import (
	"errors"

	"github.com/shopspring/decimal"

	"perpsim/config"
	"perpsim/currency"
	"perpsim/errs"
	"perpsim/ledger"
	"perpsim/marketupdate"
	"perpsim/order"
	"perpsim/orderbook"
	"perpsim/position"
	"perpsim/ratelimit"
	"perpsim/risk"
	"perpsim/tracker"
)

// CancelBy selects an order to cancel either by exchange-assigned
// OrderId or by the caller's own UserOrderId.
type CancelBy struct {
	id        *order.ID
	userOrder *order.UserID
}

func ByOrderID(id order.ID) CancelBy { return CancelBy{id: &id} }
func ByUserOrderID(id order.UserID) CancelBy { return CancelBy{userOrder: &id} }

// Exchange owns the market state, active order book, ledger, and
// position/balances for one account trading one instrument.
type Exchange struct {
	cfg   config.Config
	state *marketupdate.MarketState
	book  *orderbook.Book
	ledg  *ledger.Ledger
	bal   position.Balances
	pos   position.Position

	ids      order.Counter
	rate     *ratelimit.Limiter
	riskEng  risk.Engine
	trk      tracker.Tracker
	clearing ClearingHouse

	orderMarginReserved map[order.ID]decimal.Decimal
	orderMarginOriginal map[order.ID]decimal.Decimal
	userOrderIndex      map[order.UserID]order.ID
}

// New constructs an Exchange. trk may be tracker.NoOp{} if the caller has
// no observer wired in.
func New(cfg config.Config, initialBid, initialAsk currency.QuoteAmount, trk tracker.Tracker) (*Exchange, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l, err := ledger.New(cfg.StartingBalance)
	if err != nil {
		return nil, err
	}
	if trk == nil {
		trk = tracker.NoOp{}
	}
	return &Exchange{
		cfg:   cfg,
		state: marketupdate.NewMarketState(cfg.ContractSpec.PriceFilter, initialBid, initialAsk),
		book:  orderbook.New(cfg.MaxActiveOrders),
		ledg:  l,
		bal:   position.Balances{Available: cfg.StartingBalance},
		pos:   position.NewNeutral(),

		rate: ratelimit.New(cfg.OrdersPerSecond),
		riskEng: risk.Engine{
			Leverage:                  cfg.ContractSpec.Leverage,
			MaintenanceMarginFraction: cfg.ContractSpec.MaintenanceMarginFraction,
		},
		trk:      trk,
		clearing: NoClearingHouse{},

		orderMarginReserved: make(map[order.ID]decimal.Decimal),
		orderMarginOriginal: make(map[order.ID]decimal.Decimal),
		userOrderIndex:      make(map[order.UserID]order.ID),
	}, nil
}

func (e *Exchange) MarketState() *marketupdate.MarketState { return e.state }
func (e *Exchange) Position() position.Position { return e.pos }
func (e *Exchange) Balances() position.Balances { return e.bal }

// ActiveLimitOrders calls fn for every resting bid (descending price)
// then every resting ask (ascending price).
func (e *Exchange) ActiveLimitOrders(fn func(*order.LimitOrder) bool) {
	keepGoing := true
	e.book.Bids(func(o *order.LimitOrder) bool {
		keepGoing = fn(o)
		return keepGoing
	})
	if !keepGoing {
		return
	}
	e.book.Asks(fn)
}

func (e *Exchange) marginCurrency() currency.MarginCurrency {
	if e.cfg.ContractSpec.MarginCurrencyIsBase {
		return currency.MarginBase
	}
	return currency.MarginQuote
}

// notifyTracker shields matching from a misbehaving tracker.
func (e *Exchange) notifyTracker(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

// SubmitLimitOrder runs the full acceptance pipeline from spec §4.C:
// rate limit, filters, GoodTilCrossing repricing check, margin check,
// id assignment, book insertion, and the order-margin ledger transfer.
func (e *Exchange) SubmitLimitOrder(side order.Side, limitPrice currency.QuoteAmount, qty currency.BaseAmount, userOrderID *order.UserID, tsNs int64) (*order.LimitOrder, error) {
	if err := e.rate.Acquire(tsNs); err != nil {
		return nil, err
	}
	lo, delta, err := e.validateNewLimitOrder(side, limitPrice, qty, userOrderID)
	if err != nil {
		return nil, err
	}
	return e.acceptAndInsert(lo, e.ids.Next(), delta, tsNs)
}

// validateNewLimitOrder runs the filter/GoodTilCrossing/margin checks
// shared by a fresh submission and an amend's resubmission, and
// constructs the not-yet-accepted order.
func (e *Exchange) validateNewLimitOrder(side order.Side, limitPrice currency.QuoteAmount, qty currency.BaseAmount, userOrderID *order.UserID) (*order.LimitOrder, decimal.Decimal, error) {
	if err := e.cfg.ContractSpec.PriceFilter.Validate(limitPrice, nil); err != nil {
		return nil, decimal.Decimal{}, err
	}
	if err := e.cfg.ContractSpec.QuantityFilter.Validate(qty); err != nil {
		return nil, decimal.Decimal{}, err
	}

	touch := e.state.Ask()
	if side == order.Sell {
		touch = e.state.Bid()
	}
	crosses := (side == order.Buy && limitPrice.GreaterThanOrEqual(e.state.Ask())) ||
		(side == order.Sell && limitPrice.LessThanOrEqual(e.state.Bid()))
	if crosses {
		return nil, decimal.Decimal{}, &errs.GoodTillCrossingRejected{LimitPrice: limitPrice.Decimal(), Touch: touch.Decimal()}
	}

	delta := e.riskEng.OrderMarginDelta(e.pos, side, qty.Decimal(), limitPrice.Decimal())
	if err := e.riskEng.CheckAvailable(e.bal.Available, delta); err != nil {
		return nil, decimal.Decimal{}, err
	}

	lo, err := order.NewLimitOrder(side, limitPrice, qty, userOrderID, order.GoodTilCrossing)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	return lo, delta, nil
}

// acceptAndInsert assigns id to lo, inserts it into the book, and posts
// its order-margin reservation.
func (e *Exchange) acceptAndInsert(lo *order.LimitOrder, id order.ID, delta decimal.Decimal, tsNs int64) (*order.LimitOrder, error) {
	if err := lo.Accept(id, tsNs); err != nil {
		return nil, err
	}
	if err := e.book.TryInsert(lo); err != nil {
		return nil, err
	}

	if delta.IsPositive() {
		newBal, err := e.bal.ReserveOrderMargin(delta)
		if err != nil {
			return nil, err
		}
		if err := e.ledg.Transfer(ledger.UserOrderMargin, ledger.UserWallet, delta); err != nil {
			return nil, err
		}
		e.bal = newBal
	}
	e.orderMarginReserved[id] = delta
	e.orderMarginOriginal[id] = delta
	if uid, ok := lo.UserOrderID(); ok {
		e.userOrderIndex[uid] = id
	}

	e.notifyTracker(func() { e.trk.LogLimitOrderSubmission(lo) })
	return lo, nil
}

// CancelLimitOrder removes a resting order and reverses its order-margin
// reservation.
func (e *Exchange) CancelLimitOrder(by CancelBy) error {
	id, err := e.resolveCancelID(by)
	if err != nil {
		return err
	}
	lo, err := e.book.RemoveByID(id)
	if err != nil {
		return err
	}
	if err := lo.Cancel(); err != nil {
		return err
	}
	remaining := e.orderMarginReserved[id]
	if remaining.IsPositive() {
		if err := e.ledg.Transfer(ledger.UserWallet, ledger.UserOrderMargin, remaining); err != nil {
			return err
		}
		newBal, err := e.bal.ReleaseOrderMargin(remaining)
		if err != nil {
			return err
		}
		e.bal = newBal
	}
	delete(e.orderMarginReserved, id)
	delete(e.orderMarginOriginal, id)
	if uid, ok := lo.UserOrderID(); ok {
		delete(e.userOrderIndex, uid)
	}
	e.notifyTracker(func() { e.trk.LogLimitOrderCancellation(lo) })
	return nil
}

func (e *Exchange) resolveCancelID(by CancelBy) (order.ID, error) {
	if by.id != nil {
		return *by.id, nil
	}
	if by.userOrder != nil {
		id, ok := e.userOrderIndex[*by.userOrder]
		if !ok {
			return 0, orderbook.ErrNotFound
		}
		return id, nil
	}
	return 0, errors.New("exchange: CancelBy must specify an id or user order id")
}

// AmendLimitOrder implements spec §4.C's amend semantics: a qty at or
// below the already-filled amount cancels the remainder; otherwise this
// is an atomic cancel+submit that keeps the OrderId but loses its
// original ts_received (and thus its priority at the price level).
func (e *Exchange) AmendLimitOrder(id order.ID, newPrice *currency.QuoteAmount, newQty *currency.BaseAmount, tsNs int64) (*order.LimitOrder, error) {
	if err := e.rate.Acquire(tsNs); err != nil {
		return nil, err
	}
	existing, err := e.book.GetByID(id)
	if err != nil {
		return nil, err
	}
	if newQty != nil && newQty.LessThanOrEqual(existing.FilledQty()) {
		if cerr := e.CancelLimitOrder(ByOrderID(id)); cerr != nil {
			return nil, cerr
		}
		return nil, &errs.AmendQtyAlreadyFilled{}
	}

	price := existing.LimitPrice()
	if newPrice != nil {
		price = *newPrice
	}
	qty := existing.RemainingQty()
	if newQty != nil {
		qty = newQty.Sub(existing.FilledQty())
	}
	side := existing.Side()
	var userOrderID *order.UserID
	if uid, ok := existing.UserOrderID(); ok {
		userOrderID = &uid
	}

	// Validate the replacement as if the existing reservation were already
	// released, so a rejected amend leaves the original order resting.
	saved := e.bal
	e.bal.Available = e.bal.Available.Add(e.orderMarginReserved[id])
	lo, delta, err := e.validateNewLimitOrder(side, price, qty, userOrderID)
	e.bal = saved
	if err != nil {
		return nil, err
	}
	if err := e.CancelLimitOrder(ByOrderID(id)); err != nil {
		return nil, err
	}
	return e.acceptAndInsert(lo, id, delta, tsNs)
}

// SubmitMarketOrder executes immediately against the opposite touch:
// ask for a buy, bid for a sell. There is no depth; the simulated
// counterparty is always infinite at the touch.
func (e *Exchange) SubmitMarketOrder(side order.Side, qty currency.BaseAmount, userOrderID *order.UserID, tsNs int64) error {
	if err := e.rate.Acquire(tsNs); err != nil {
		return err
	}
	if err := e.cfg.ContractSpec.QuantityFilter.Validate(qty); err != nil {
		return err
	}
	mo, err := order.NewMarketOrder(side, qty, userOrderID)
	if err != nil {
		return err
	}
	fillPrice := e.state.Ask()
	if side == order.Sell {
		fillPrice = e.state.Bid()
	}
	delta := e.riskEng.OrderMarginDelta(e.pos, side, qty.Decimal(), fillPrice.Decimal())
	if err := e.riskEng.CheckAvailable(e.bal.Available, delta); err != nil {
		return err
	}

	if err := e.settleFill(side, qty, fillPrice, e.cfg.ContractSpec.TakerFee, tsNs); err != nil {
		return err
	}
	e.notifyTracker(func() {
		e.trk.LogMarketOrderSubmission(mo)
		e.trk.LogMarketOrderFill(mo, fillPrice.Decimal(), qty.Decimal())
		e.trk.LogTrade(side, fillPrice.Decimal(), qty.Decimal())
	})
	return nil
}

// UpdateState validates and applies a market update: advances the
// clock/touch, matches resting orders against it, settles fills, and
// runs the maintenance-margin check. Fill events are returned in
// execution order. A maintenance-margin breach force-closes the position
// within the same call and is surfaced as an error alongside any fills
// already produced.
func (e *Exchange) UpdateState(tsNs int64, u marketupdate.Update) ([]LimitOrderUpdate, error) {
	if err := e.state.Advance(tsNs, u); err != nil {
		return nil, err
	}
	e.notifyTracker(func() { e.trk.Update(e.state) })

	var updates []LimitOrderUpdate
	for _, side := range [2]order.Side{order.Buy, order.Sell} {
		for {
			var candidate *order.LimitOrder
			if side == order.Buy {
				candidate, _ = e.book.BestBid()
			} else {
				candidate, _ = e.book.BestAsk()
			}
			if candidate == nil {
				break
			}
			fillQty, ok := u.LimitOrderFilled(candidate)
			if !ok || !fillQty.IsPositive() {
				break
			}
			fillPrice := candidate.LimitPrice()
			if err := e.settleLimitFill(candidate, fillQty, fillPrice, tsNs); err != nil {
				return updates, err
			}
			kind := PartiallyFilled
			if candidate.State() == order.StateFilled {
				kind = FullyFilled
				if _, rerr := e.book.RemoveByID(mustID(candidate)); rerr != nil {
					return updates, rerr
				}
			}
			updates = append(updates, LimitOrderUpdate{Kind: kind, Order: candidate})
			e.notifyTracker(func() { e.trk.LogLimitOrderFill(candidate, fillQty.Decimal()) })
			if kind == PartiallyFilled {
				// a Trade's finite budget is exhausted once it stops
				// reporting fills for the best-priced order; break to
				// avoid an infinite loop on an update that only ever
				// partially fills the touch.
				break
			}
		}
	}

	if err := e.checkMaintenance(tsNs); err != nil {
		return updates, err
	}
	return updates, nil
}

// settleLimitFill applies one fill of a resting limit order: releases the
// slice of its order-margin reservation earned by this fill straight into
// PositionMargin (the spec §4.E USER_ORDER_MARGIN -> USER_POSITION_MARGIN
// reshuffle), runs the common fee/position/P&L settlement — which
// true-ups PositionMargin to whatever the new position actually requires,
// sending any excess back to Available — and advances the order's own
// state. Resting fills are maker fills.
//
// The release is computed against the order's original reservation, kept
// immutably in orderMarginOriginal, rather than against the
// already-shrunk orderMarginReserved: applying the fill fraction to a
// repeatedly-decremented base under-releases on every fill after the
// first. The terminal fill instead releases whatever remains outright,
// so a StateFilled order always ends at exactly zero reserved margin.
func (e *Exchange) settleLimitFill(lo *order.LimitOrder, fillQty currency.BaseAmount, fillPrice currency.QuoteAmount, tsNs int64) error {
	id := mustID(lo)
	reservedRemaining := e.orderMarginReserved[id]
	originalReserved := e.orderMarginOriginal[id]

	newFilled := lo.FilledQty().Add(fillQty)
	var marginRelease decimal.Decimal
	if newFilled.GreaterThanOrEqual(lo.TotalQty()) {
		marginRelease = reservedRemaining
	} else {
		filledFraction := newFilled.Decimal().Div(lo.TotalQty().Decimal())
		targetRemaining := originalReserved.Mul(decimal.NewFromInt(1).Sub(filledFraction))
		marginRelease = reservedRemaining.Sub(targetRemaining)
	}

	if marginRelease.IsPositive() {
		if err := e.ledg.Transfer(ledger.UserOrderMargin, ledger.UserPositionMargin, marginRelease); err != nil {
			return err
		}
		newBal, err := e.bal.ShiftOrderToPosition(marginRelease)
		if err != nil {
			return err
		}
		e.bal = newBal
		e.orderMarginReserved[id] = reservedRemaining.Sub(marginRelease)
	}

	if err := e.settleFill(lo.Side(), fillQty, fillPrice, e.cfg.ContractSpec.MakerFee, tsNs); err != nil {
		return err
	}

	if err := lo.Fill(fillQty, tsNs); err != nil {
		return err
	}
	if lo.State() == order.StateFilled {
		delete(e.orderMarginReserved, id)
		delete(e.orderMarginOriginal, id)
	}
	return nil
}

// settleFill is the currency-agnostic core of spec §4.E: fee, position
// change, realized P&L, and the position-margin rebalance that follows
// from the position's new qty and entry price. It does not touch the
// order's own state or its order-margin reservation, which differ
// between resting-order fills and immediate market-order fills.
func (e *Exchange) settleFill(side order.Side, fillQty currency.BaseAmount, fillPrice currency.QuoteAmount, feeRate decimal.Decimal, tsNs int64) error {
	notional := fillQty.Convert(fillPrice)
	fee := notional.Decimal().Mul(feeRate)

	if fee.IsPositive() {
		if err := e.ledg.Transfer(ledger.ExchangeFee, ledger.UserWallet, fee); err != nil {
			return err
		}
		newBal, err := e.bal.ApplyFee(fee)
		if err != nil {
			return err
		}
		e.bal = newBal
	}

	res, err := e.pos.Change(fillQty, fillPrice, side, e.marginCurrency())
	if err != nil {
		return err
	}
	if res.RealizedPnL.IsPositive() {
		if err := e.ledg.Transfer(ledger.UserWallet, ledger.Treasury, res.RealizedPnL); err != nil {
			return err
		}
	} else if res.RealizedPnL.IsNegative() {
		if err := e.ledg.Transfer(ledger.Treasury, ledger.UserWallet, res.RealizedPnL.Neg()); err != nil {
			return err
		}
	}
	newBal, err := e.bal.ApplyRealizedPnL(res.RealizedPnL)
	if err != nil {
		return err
	}
	e.bal = newBal
	e.pos = res.NewPosition

	required := decimal.Zero
	if !e.pos.IsNeutral() {
		required = e.riskEng.InitialMargin(e.pos.Qty().Decimal(), e.pos.EntryPrice().Decimal())
	}
	return e.applyPositionMarginTarget(required)
}

// applyPositionMarginTarget moves the ledger's USER_POSITION_MARGIN
// account, and the mirrored Balances field, toward required.
func (e *Exchange) applyPositionMarginTarget(required decimal.Decimal) error {
	delta := required.Sub(e.bal.PositionMargin)
	if delta.IsZero() {
		return nil
	}
	if delta.IsPositive() {
		if err := e.ledg.Transfer(ledger.UserPositionMargin, ledger.UserWallet, delta); err != nil {
			return err
		}
	} else {
		if err := e.ledg.Transfer(ledger.UserWallet, ledger.UserPositionMargin, delta.Neg()); err != nil {
			return err
		}
	}
	newBal, err := e.bal.RebalancePositionMargin(required)
	if err != nil {
		return err
	}
	e.bal = newBal
	return nil
}

// checkMaintenance runs the maintenance-margin check and force-closes
// the position at the touch price on a breach.
func (e *Exchange) checkMaintenance(tsNs int64) error {
	if e.pos.IsNeutral() {
		return nil
	}
	mid := e.state.Mid()
	upnl := risk.UnrealizedPnL(e.pos, mid.Decimal())
	if err := e.riskEng.CheckMaintenanceMargin(e.bal.PositionMargin, upnl, e.pos, mid.Decimal()); err == nil {
		return nil
	}

	closeSide, closePrice := order.Sell, e.state.Bid()
	if e.pos.Kind() == position.Short {
		closeSide, closePrice = order.Buy, e.state.Ask()
	}
	if err := e.settleFill(closeSide, e.pos.Qty(), closePrice, decimal.Zero, tsNs); err != nil {
		return err
	}
	return errs.Liquidate("maintenance margin breached; position force-closed at touch")
}

func mustID(lo *order.LimitOrder) order.ID {
	m, ok := lo.Meta()
	if !ok {
		panic("exchange: resting order missing Meta")
	}
	return m.ID
}
