package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		name     string
		amount   string
		currency string
		want     int64
		wantErr  error
	}{
		{name: "whole dollars", amount: "19.99", currency: "usd", want: 1999},
		{name: "exact dollar", amount: "5", currency: "usd", want: 500},
		{name: "rounds half up", amount: "0.015", currency: "usd", want: 2},
		{name: "zero decimal currency", amount: "1200", currency: "jpy", want: 1200},
		{name: "unknown currency defaults to 2", amount: "3.50", currency: "xxx", want: 350},
		{name: "zero rejected", amount: "0", currency: "usd", wantErr: ErrInvalidAmount},
		{name: "negative rejected", amount: "-4.20", currency: "usd", wantErr: ErrInvalidAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tc.amount), tc.currency)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, cents := range []int64{1, 99, 100, 1999, 123456789} {
		d := FromMinorUnits(cents, "usd")
		back, err := ToMinorUnits(d, "usd")
		if err != nil {
			t.Fatalf("round trip of %d: %v", cents, err)
		}
		if back != cents {
			t.Fatalf("round trip of %d lost precision: got %d", cents, back)
		}
	}
}

func TestFromMinorUnits(t *testing.T) {
	if got := FromMinorUnits(1999, "usd"); !got.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("want 19.99, got %s", got)
	}
	if got := FromMinorUnits(1200, "jpy"); !got.Equal(decimal.RequireFromString("1200")) {
		t.Fatalf("want 1200, got %s", got)
	}
}
