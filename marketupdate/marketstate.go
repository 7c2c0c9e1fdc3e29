package marketupdate

import (
	"github.com/shopspring/decimal"

	"perpsim/currency"
	"perpsim/filter"
)

var twoDec = decimal.NewFromInt(2)

// MarketState tracks the current touch and a monotonic step counter,
// advanced only by validated updates (spec §3/§4.I).
type MarketState struct {
	priceFilter filter.Price
	bid         currency.QuoteAmount
	ask         currency.QuoteAmount
	currentTsNs int64
	step        uint64
}

func NewMarketState(pf filter.Price, initialBid, initialAsk currency.QuoteAmount) *MarketState {
	return &MarketState{priceFilter: pf, bid: initialBid, ask: initialAsk}
}

func (s *MarketState) Bid() currency.QuoteAmount { return s.bid }
func (s *MarketState) Ask() currency.QuoteAmount { return s.ask }

// Mid returns (bid + ask) / 2.
func (s *MarketState) Mid() currency.QuoteAmount {
	sum := s.bid.Add(s.ask)
	return currency.NewQuote(sum.Decimal().Div(twoDec))
}

func (s *MarketState) CurrentTsNs() int64 { return s.currentTsNs }
func (s *MarketState) Step() uint64 { return s.step }

// Advance validates u against the current price filter, then applies its
// touch, advances current_ts_ns, and increments step. Returns an error and
// leaves the state unchanged if validation fails.
func (s *MarketState) Advance(tsNs int64, u Update) error {
	if err := u.Validate(s.priceFilter); err != nil {
		return err
	}
	bid, ask := u.Touch(s.bid, s.ask)
	s.bid = bid
	s.ask = ask
	s.currentTsNs = tsNs
	s.step++
	return nil
}
