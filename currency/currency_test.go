package currency

import "testing"

func TestConvert(t *testing.T) {
	cases := []struct {
		name  string
		base  BaseAmount
		price QuoteAmount
		want  QuoteAmount
	}{
		{name: "one btc at 20k", base: BaseFromFloat(1.0), price: QuoteFromFloat(20_000.0), want: QuoteFromFloat(20_000.0)},
		{name: "half btc at 20k", base: BaseFromFloat(0.5), price: QuoteFromFloat(20_000.0), want: QuoteFromFloat(10_000.0)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.base.Convert(tc.price)
			if !got.Equal(tc.want) {
				t.Fatalf("Convert() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestConvertQuoteToBase(t *testing.T) {
	got := QuoteFromFloat(20_000.0).Convert(QuoteFromFloat(20_000.0))
	want := BaseFromFloat(1.0)
	if !got.Equal(want) {
		t.Fatalf("Convert() = %s, want %s", got, want)
	}
}

func TestArithmetic(t *testing.T) {
	a := BaseFromInt(3)
	b := BaseFromInt(2)
	if sum := a.Add(b); !sum.Equal(BaseFromInt(5)) {
		t.Fatalf("Add() = %s, want 5", sum)
	}
	if diff := a.Sub(b); !diff.Equal(BaseFromInt(1)) {
		t.Fatalf("Sub() = %s, want 1", diff)
	}
	if neg := a.Neg(); !neg.Equal(BaseFromInt(-3)) {
		t.Fatalf("Neg() = %s, want -3", neg)
	}
}
