package strategy

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSizeQuantity(t *testing.T) {
	tests := []struct {
		name       string
		cash       string
		lastPrice  string
		cashAtRisk string
		want       int64
	}{
		{"typical sizing", "10000", "100", "0.5", 50},
		{"full allocation", "9900", "100", "1", 99},
		{"rounds half up", "101", "1", "0.5", 51},   // 50.5 -> 51
		{"rounds up above half", "99", "1", "0.4", 40}, // 39.6 -> 40
		{"tiny cash rounds to zero", "50", "100", "0.5", 0}, // 0.25 -> 0
		{"zero cash", "0", "100", "0.5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sizing, err := Size(d(tt.cash), d(tt.lastPrice), d(tt.cashAtRisk))
			if err != nil {
				t.Fatalf("Size: %v", err)
			}
			if sizing.Quantity != tt.want {
				t.Fatalf("quantity = %d, want %d", sizing.Quantity, tt.want)
			}
			if sizing.Quantity < 0 {
				t.Fatalf("quantity must be non-negative, got %d", sizing.Quantity)
			}
			if !sizing.Cash.Equal(d(tt.cash)) || !sizing.LastPrice.Equal(d(tt.lastPrice)) {
				t.Fatalf("sizing must carry its inputs unchanged: %+v", sizing)
			}
		})
	}
}

func TestSizeInvalidPrice(t *testing.T) {
	for _, price := range []string{"0", "-1"} {
		if _, err := Size(d("10000"), d(price), d("0.5")); !errors.Is(err, ErrInvalidPrice) {
			t.Fatalf("price %s: expected ErrInvalidPrice, got %v", price, err)
		}
	}
}

func TestSizeMonotonicity(t *testing.T) {
	risk := d("0.5")

	// Non-decreasing in cash for a fixed price.
	prev := int64(-1)
	for _, cash := range []string{"100", "1000", "5000", "10000", "50000"} {
		sizing, err := Size(d(cash), d("100"), risk)
		if err != nil {
			t.Fatalf("Size: %v", err)
		}
		if sizing.Quantity < prev {
			t.Fatalf("quantity decreased as cash grew: %d after %d", sizing.Quantity, prev)
		}
		prev = sizing.Quantity
	}

	// Non-increasing in price for fixed cash.
	prev = int64(1 << 62)
	for _, price := range []string{"1", "10", "100", "1000"} {
		sizing, err := Size(d("10000"), d(price), risk)
		if err != nil {
			t.Fatalf("Size: %v", err)
		}
		if sizing.Quantity > prev {
			t.Fatalf("quantity increased as price grew: %d after %d", sizing.Quantity, prev)
		}
		prev = sizing.Quantity
	}
}
