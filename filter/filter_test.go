package filter

import (
	"testing"

	"github.com/shopspring/decimal"

	"perpsim/currency"
)

func TestPriceValidate(t *testing.T) {
	minP := decimal.NewFromFloat(1)
	maxP := decimal.NewFromFloat(1_000_000)
	pf := Price{
		MinPrice: &minP,
		MaxPrice: &maxP,
		TickSize: decimal.NewFromFloat(0.5),
	}
	cases := []struct {
		name    string
		price   currency.QuoteAmount
		wantErr bool
	}{
		{name: "aligned", price: currency.QuoteFromFloat(100.5), wantErr: false},
		{name: "not aligned to tick", price: currency.QuoteFromFloat(100.3), wantErr: true},
		{name: "below minimum", price: currency.QuoteFromFloat(0.5), wantErr: true},
		{name: "above maximum", price: currency.QuoteFromFloat(2_000_000), wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := pf.Validate(tc.price, nil)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestPriceValidateMultiplierBand(t *testing.T) {
	pf := Price{
		TickSize:       decimal.NewFromFloat(0.01),
		MultiplierUp:   decimal.NewFromFloat(1.1),
		MultiplierDown: decimal.NewFromFloat(0.9),
	}
	mid := currency.QuoteFromFloat(100)
	if err := pf.Validate(currency.QuoteFromFloat(105), &mid); err != nil {
		t.Fatalf("expected in-band price to pass, got %v", err)
	}
	if err := pf.Validate(currency.QuoteFromFloat(111), &mid); err == nil {
		t.Fatal("expected above-band price to fail")
	}
	if err := pf.Validate(currency.QuoteFromFloat(89), &mid); err == nil {
		t.Fatal("expected below-band price to fail")
	}
}

func TestQuantityValidate(t *testing.T) {
	minQ := decimal.NewFromFloat(0.01)
	qf := Quantity{MinQty: &minQ, StepSize: decimal.NewFromFloat(0.01)}
	if err := qf.Validate(currency.BaseFromFloat(0.015)); err == nil {
		t.Fatal("expected misaligned step to fail")
	}
	if err := qf.Validate(currency.BaseFromFloat(0.02)); err != nil {
		t.Fatalf("expected aligned qty to pass, got %v", err)
	}
}
