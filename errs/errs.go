// Package errs defines the five error kinds from spec §7: Config, Filter,
// Order, Risk, and Lookup. Filter errors are *filter.Error (see the
// filter package); the remaining four kinds live here so the exchange
// core and its collaborators can return typed, never-swallowed errors.
package errs

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ConfigError reports an invalid configuration value (leverage, starting
// balance, filter bounds).
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// OrderError is a generic order failure carrying a kind and a message.
// The exchange core reports its order failures through the specific types
// below and through the orderbook (ErrMaxActiveOrders, ErrDuplicateID,
// ErrNotFound) and ratelimit (ErrRateLimitReached) sentinel errors.
type OrderError struct {
	Kind string
	Msg  string
}

func (e *OrderError) Error() string { return "order: " + e.Kind + ": " + e.Msg }

func NewOrderError(kind, msg string) *OrderError { return &OrderError{Kind: kind, Msg: msg} }

// GoodTillCrossingRejected reports that a submitted limit order crossed
// the opposite touch under the GoodTilCrossing repricing policy.
type GoodTillCrossingRejected struct {
	LimitPrice decimal.Decimal
	Touch      decimal.Decimal
}

func (e *GoodTillCrossingRejected) Error() string {
	return fmt.Sprintf("order: good-til-crossing rejected: limit_price=%s touch=%s", e.LimitPrice, e.Touch)
}

// AmendQtyAlreadyFilled reports that an amend shrank the order to at or
// below its already-filled quantity.
type AmendQtyAlreadyFilled struct{}

func (e *AmendQtyAlreadyFilled) Error() string {
	return "order: amended quantity already filled"
}

// RiskError covers margin-sufficiency and liquidation failures (§4.G/§7).
type RiskError struct {
	Kind string
	Msg  string
}

func (e *RiskError) Error() string { return "risk: " + e.Kind + ": " + e.Msg }

func NotEnoughAvailableBalance(required, available decimal.Decimal) *RiskError {
	return &RiskError{Kind: "not_enough_available_balance", Msg: fmt.Sprintf("required=%s available=%s", required, available)}
}

func Liquidate(reason string) *RiskError {
	return &RiskError{Kind: "liquidate", Msg: reason}
}

// LookupError signals an internal invariant violation: an account or
// order id that valid external inputs should never produce. Its presence
// always indicates a bug in the core rather than bad input. The core's
// own id-index checks (orderbook.Book.RemoveByID, exchange's mustID)
// panic on such a violation instead of returning a LookupError.
type LookupError struct {
	Entity string
	ID     string
}

func (e *LookupError) Error() string {
	return "lookup: " + e.Entity + " not found: " + e.ID
}
