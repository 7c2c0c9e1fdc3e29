package position

import (
	"testing"

	"perpsim/currency"
	"perpsim/order"
)

func TestChangeOpensLong(t *testing.T) {
	p := NewNeutral()
	res, err := p.Change(currency.BaseFromFloat(1), currency.QuoteFromFloat(100), order.Buy, currency.MarginQuote)
	if err != nil {
		t.Fatalf("Change() error = %v", err)
	}
	if res.NewPosition.Kind() != Long {
		t.Fatalf("Kind() = %v, want Long", res.NewPosition.Kind())
	}
	if !res.NewPosition.EntryPrice().Equal(currency.QuoteFromFloat(100)) {
		t.Fatalf("EntryPrice() = %s, want 100", res.NewPosition.EntryPrice())
	}
	if !res.RealizedPnL.IsZero() {
		t.Fatalf("RealizedPnL = %s, want 0", res.RealizedPnL)
	}
}

func TestChangeSameSideWeightedAverage(t *testing.T) {
	p := NewNeutral()
	res, _ := p.Change(currency.BaseFromFloat(1), currency.QuoteFromFloat(100), order.Buy, currency.MarginQuote)
	res, err := res.NewPosition.Change(currency.BaseFromFloat(1), currency.QuoteFromFloat(200), order.Buy, currency.MarginQuote)
	if err != nil {
		t.Fatalf("Change() error = %v", err)
	}
	if !res.NewPosition.Qty().Equal(currency.BaseFromFloat(2)) {
		t.Fatalf("Qty() = %s, want 2", res.NewPosition.Qty())
	}
	if !res.NewPosition.EntryPrice().Equal(currency.QuoteFromFloat(150)) {
		t.Fatalf("EntryPrice() = %s, want 150 (VWAP)", res.NewPosition.EntryPrice())
	}
}

func TestChangeClosesLongRealizesLinearPnL(t *testing.T) {
	p := NewNeutral()
	res, _ := p.Change(currency.BaseFromFloat(1), currency.QuoteFromFloat(100), order.Buy, currency.MarginQuote)
	res, err := res.NewPosition.Change(currency.BaseFromFloat(1), currency.QuoteFromFloat(110), order.Sell, currency.MarginQuote)
	if err != nil {
		t.Fatalf("Change() error = %v", err)
	}
	if !res.NewPosition.IsNeutral() {
		t.Fatalf("Kind() = %v, want Neutral", res.NewPosition.Kind())
	}
	if !res.RealizedPnL.Equal(currency.QuoteFromFloat(10).Decimal()) {
		t.Fatalf("RealizedPnL = %s, want 10", res.RealizedPnL)
	}
}

func TestChangeFlipsLongToShort(t *testing.T) {
	p := NewNeutral()
	res, _ := p.Change(currency.BaseFromFloat(1), currency.QuoteFromFloat(100), order.Buy, currency.MarginQuote)
	res, err := res.NewPosition.Change(currency.BaseFromFloat(3), currency.QuoteFromFloat(90), order.Sell, currency.MarginQuote)
	if err != nil {
		t.Fatalf("Change() error = %v", err)
	}
	if res.NewPosition.Kind() != Short {
		t.Fatalf("Kind() = %v, want Short", res.NewPosition.Kind())
	}
	if !res.NewPosition.Qty().Equal(currency.BaseFromFloat(2)) {
		t.Fatalf("Qty() = %s, want 2", res.NewPosition.Qty())
	}
	if !res.NewPosition.EntryPrice().Equal(currency.QuoteFromFloat(90)) {
		t.Fatalf("EntryPrice() = %s, want 90", res.NewPosition.EntryPrice())
	}
	if !res.RealizedPnL.Equal(currency.QuoteFromFloat(-10).Decimal()) {
		t.Fatalf("RealizedPnL = %s, want -10", res.RealizedPnL)
	}
}
