package marketupdate

import (
	"testing"

	"perpsim/currency"
	"perpsim/filter"
	"perpsim/order"
)

func tickFilter() filter.Price {
	return filter.Price{TickSize: currency.QuoteFromFloat(0.5).Decimal()}
}

func TestBbaNeverFills(t *testing.T) {
	lo, _ := order.NewLimitOrder(order.Buy, currency.QuoteFromFloat(100), currency.BaseFromFloat(1), nil, order.GoodTilCrossing)
	lo.Accept(1, 0)
	u := Bba{Bid: currency.QuoteFromFloat(100), Ask: currency.QuoteFromFloat(101)}
	if _, ok := u.LimitOrderFilled(lo); ok {
		t.Fatal("Bba should never fill an order")
	}
}

func TestTradePartialFillPriceTimePriority(t *testing.T) {
	buy1, _ := order.NewLimitOrder(order.Buy, currency.QuoteFromFloat(100), currency.BaseFromFloat(2), nil, order.GoodTilCrossing)
	buy1.Accept(1, 0)
	trade := &Trade{Price: currency.QuoteFromFloat(100), Qty: currency.BaseFromFloat(1), AggressorSide: order.Sell}
	fill, ok := trade.LimitOrderFilled(buy1)
	if !ok {
		t.Fatal("expected buy order to fill")
	}
	if !fill.Equal(currency.BaseFromFloat(1)) {
		t.Fatalf("fill = %s, want 1", fill)
	}
	// Budget exhausted: a second order should not fill from the same trade.
	buy2, _ := order.NewLimitOrder(order.Buy, currency.QuoteFromFloat(100), currency.BaseFromFloat(1), nil, order.GoodTilCrossing)
	buy2.Accept(2, 0)
	if _, ok := trade.LimitOrderFilled(buy2); ok {
		t.Fatal("trade budget should be exhausted")
	}
}

func TestTradeIgnoresSameSideAsAggressor(t *testing.T) {
	sell, _ := order.NewLimitOrder(order.Sell, currency.QuoteFromFloat(100), currency.BaseFromFloat(1), nil, order.GoodTilCrossing)
	sell.Accept(1, 0)
	trade := &Trade{Price: currency.QuoteFromFloat(100), Qty: currency.BaseFromFloat(1), AggressorSide: order.Sell}
	if _, ok := trade.LimitOrderFilled(sell); ok {
		t.Fatal("aggressor-side resting order should not be eligible")
	}
}

func TestCandleFillsFullRemaining(t *testing.T) {
	buy, _ := order.NewLimitOrder(order.Buy, currency.QuoteFromFloat(100), currency.BaseFromFloat(1), nil, order.GoodTilCrossing)
	buy.Accept(1, 0)
	c := Candle{Bid: currency.QuoteFromFloat(100), Ask: currency.QuoteFromFloat(101), Low: currency.QuoteFromFloat(99), High: currency.QuoteFromFloat(102)}
	fill, ok := c.LimitOrderFilled(buy)
	if !ok || !fill.Equal(currency.BaseFromFloat(1)) {
		t.Fatalf("fill = %s, ok = %v, want 1/true", fill, ok)
	}
}

func TestMarketStateAdvance(t *testing.T) {
	ms := NewMarketState(tickFilter(), currency.QuoteFromFloat(100), currency.QuoteFromFloat(101))
	if err := ms.Advance(1000, Bba{Bid: currency.QuoteFromFloat(100.5), Ask: currency.QuoteFromFloat(101.5)}); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if ms.Step() != 1 {
		t.Fatalf("Step() = %d, want 1", ms.Step())
	}
	if ms.CurrentTsNs() != 1000 {
		t.Fatalf("CurrentTsNs() = %d, want 1000", ms.CurrentTsNs())
	}
	if !ms.Mid().Equal(currency.QuoteFromFloat(101)) {
		t.Fatalf("Mid() = %s, want 101", ms.Mid())
	}
}

func TestMarketStateAdvanceRejectsInvalid(t *testing.T) {
	ms := NewMarketState(tickFilter(), currency.QuoteFromFloat(100), currency.QuoteFromFloat(101))
	err := ms.Advance(1000, Bba{Bid: currency.QuoteFromFloat(101), Ask: currency.QuoteFromFloat(100)})
	if err != ErrBidNotBelowAsk {
		t.Fatalf("Advance() error = %v, want ErrBidNotBelowAsk", err)
	}
	if ms.Step() != 0 {
		t.Fatal("Step() should not advance on a rejected update")
	}
}
