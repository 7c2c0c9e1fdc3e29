package risk

import (
	"testing"

	"github.com/shopspring/decimal"

	"perpsim/currency"
	"perpsim/order"
	"perpsim/position"
)

func TestInitialMargin(t *testing.T) {
	e := Engine{Leverage: decimal.NewFromInt(10)}
	got := e.InitialMargin(decimal.NewFromInt(1), decimal.NewFromInt(100))
	want := decimal.NewFromInt(10)
	if !got.Equal(want) {
		t.Fatalf("InitialMargin() = %s, want %s", got, want)
	}
}

func TestCheckAvailable(t *testing.T) {
	e := Engine{Leverage: decimal.NewFromInt(10)}
	if err := e.CheckAvailable(decimal.NewFromInt(100), decimal.NewFromInt(50)); err != nil {
		t.Fatalf("CheckAvailable() error = %v", err)
	}
	if err := e.CheckAvailable(decimal.NewFromInt(10), decimal.NewFromInt(50)); err == nil {
		t.Fatal("expected insufficient balance error")
	}
}

func TestMaintenanceMarginLiquidation(t *testing.T) {
	e := Engine{Leverage: decimal.NewFromInt(10), MaintenanceMarginFraction: decimal.NewFromFloat(0.05)}
	p := position.NewNeutral()
	res, err := p.Change(currency.BaseFromFloat(1), currency.QuoteFromFloat(100), order.Buy, currency.MarginQuote)
	if err != nil {
		t.Fatalf("Change() error = %v", err)
	}
	pos := res.NewPosition
	mark := decimal.NewFromInt(90)
	upnl := UnrealizedPnL(pos, mark)
	positionMargin := decimal.NewFromInt(10) // initial margin at 10x on a 100 notional

	if err := e.CheckMaintenanceMargin(positionMargin, upnl, pos, mark); err == nil {
		t.Fatal("expected liquidation at a 10% adverse move on 10x leverage with 5% maintenance")
	}
}

func TestMaintenanceMarginHealthy(t *testing.T) {
	e := Engine{Leverage: decimal.NewFromInt(10), MaintenanceMarginFraction: decimal.NewFromFloat(0.05)}
	p := position.NewNeutral()
	res, _ := p.Change(currency.BaseFromFloat(1), currency.QuoteFromFloat(100), order.Buy, currency.MarginQuote)
	pos := res.NewPosition
	mark := decimal.NewFromInt(100)
	upnl := UnrealizedPnL(pos, mark)
	positionMargin := decimal.NewFromInt(10)

	if err := e.CheckMaintenanceMargin(positionMargin, upnl, pos, mark); err != nil {
		t.Fatalf("CheckMaintenanceMargin() error = %v, want nil", err)
	}
}
