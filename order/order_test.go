package order

import (
	"testing"

	"perpsim/currency"
)

func mustLimit(t *testing.T, side Side, price, qty float64) *LimitOrder {
	t.Helper()
	lo, err := NewLimitOrder(side, currency.QuoteFromFloat(price), currency.BaseFromFloat(qty), nil, GoodTilCrossing)
	if err != nil {
		t.Fatalf("NewLimitOrder() error = %v", err)
	}
	return lo
}

func TestLimitOrderLifecycle(t *testing.T) {
	lo := mustLimit(t, Buy, 100, 2)
	if lo.State() != StateNew {
		t.Fatalf("initial state = %v, want New", lo.State())
	}
	if _, ok := lo.Meta(); ok {
		t.Fatal("Meta() should not be available in State New")
	}

	if err := lo.Accept(1, 1000); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if lo.State() != StatePending {
		t.Fatalf("state after accept = %v, want Pending", lo.State())
	}
	meta, ok := lo.Meta()
	if !ok || meta.ID != 1 {
		t.Fatalf("Meta() = %+v, ok=%v, want id=1", meta, ok)
	}

	if err := lo.Fill(currency.BaseFromFloat(1), 2000); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if lo.State() != StatePending {
		t.Fatalf("partial fill should remain Pending, got %v", lo.State())
	}
	if !lo.RemainingQty().Equal(currency.BaseFromFloat(1)) {
		t.Fatalf("RemainingQty() = %s, want 1", lo.RemainingQty())
	}
	if _, ok := lo.TSExecuted(); ok {
		t.Fatal("TSExecuted() should not be available before full fill")
	}

	if err := lo.Fill(currency.BaseFromFloat(1), 3000); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if lo.State() != StateFilled {
		t.Fatalf("state after full fill = %v, want Filled", lo.State())
	}
	ts, ok := lo.TSExecuted()
	if !ok || ts != 3000 {
		t.Fatalf("TSExecuted() = %d, ok=%v, want 3000", ts, ok)
	}
}

func TestLimitOrderFillExceedsRemaining(t *testing.T) {
	lo := mustLimit(t, Buy, 100, 1)
	if err := lo.Accept(1, 0); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if err := lo.Fill(currency.BaseFromFloat(2), 0); err != ErrFillExceedsQty {
		t.Fatalf("Fill() error = %v, want ErrFillExceedsQty", err)
	}
}

func TestLimitOrderCancel(t *testing.T) {
	lo := mustLimit(t, Sell, 100, 1)
	if err := lo.Accept(1, 0); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if err := lo.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if lo.State() != StateCancelled {
		t.Fatalf("state = %v, want Cancelled", lo.State())
	}
	if err := lo.Cancel(); err != ErrAlreadyTerminal {
		t.Fatalf("second Cancel() error = %v, want ErrAlreadyTerminal", err)
	}
}

func TestNewLimitOrderInvariants(t *testing.T) {
	if _, err := NewLimitOrder(Buy, currency.QuoteFromFloat(100), currency.BaseFromFloat(0), nil, GoodTilCrossing); err != ErrInvalidTotalQty {
		t.Fatalf("zero qty error = %v, want ErrInvalidTotalQty", err)
	}
	if _, err := NewLimitOrder(Buy, currency.QuoteFromFloat(0), currency.BaseFromFloat(1), nil, GoodTilCrossing); err != ErrInvalidLimitPx {
		t.Fatalf("zero price error = %v, want ErrInvalidLimitPx", err)
	}
}
