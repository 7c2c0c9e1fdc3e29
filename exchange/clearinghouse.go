package exchange

import (
	"errors"

	"perpsim/marketupdate"
	"perpsim/position"
)

// ErrNotImplemented is returned by ClearingHouse stub methods. Funding
// settlement semantics are explicitly undefined (spec §9 Open Question i)
// and this engine's UpdateState never calls into ClearingHouse.
var ErrNotImplemented = errors.New("clearinghouse: not implemented")

// ClearingHouse is the funding-settlement collaborator. It exists only as
// a stub: no funding-rate model or settlement schedule is specified.
type ClearingHouse interface {
	MarkToMarket(state *marketupdate.MarketState, pos position.Position) error
	SettleFundingPeriod(state *marketupdate.MarketState) error
}

// NoClearingHouse implements ClearingHouse with stub methods that always
// report not-implemented.
type NoClearingHouse struct{}

func (NoClearingHouse) MarkToMarket(*marketupdate.MarketState, position.Position) error {
	return ErrNotImplemented
}

func (NoClearingHouse) SettleFundingPeriod(*marketupdate.MarketState) error {
	return ErrNotImplemented
}
