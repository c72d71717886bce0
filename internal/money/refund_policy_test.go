package money

import (
	"testing"
	"time"
)

func TestRefundPercent(t *testing.T) {
	tests := []struct {
		name        string
		hoursBefore float64
		expected    int
	}{
		{"well before the window", 100, 100},
		{"exactly 48 hours resolves to full refund", 48, 100},
		{"just under 48 hours", 47.99, 80},
		{"exactly 24 hours resolves to 80", 24, 80},
		{"just under 24 hours", 23.99, 50},
		{"exactly 12 hours resolves to 50", 12, 50},
		{"just under 12 hours", 11.99, 0},
		{"one hour before", 1, 0},
		{"session already started", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RefundPercent(tt.hoursBefore)
			if result != tt.expected {
				t.Errorf("RefundPercent(%v) = %d; want %d", tt.hoursBefore, result, tt.expected)
			}
		})
	}
}

func TestRefundPercentNonIncreasing(t *testing.T) {
	prev := 101
	for h := 72.0; h >= -2; h -= 0.25 {
		pct := RefundPercent(h)
		if pct > prev {
			t.Fatalf("RefundPercent(%v) = %d is greater than at a later cancellation time (%d)", h, pct, prev)
		}
		prev = pct
	}
}

func TestQuoteRefund(t *testing.T) {
	scheduled := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		price          float64
		canceledAt     time.Time
		expectedPct    int
		expectedRefund float64
		expectedFee    float64
	}{
		{
			name:           "50 hours out refunds everything",
			price:          2500,
			canceledAt:     scheduled.Add(-50 * time.Hour),
			expectedPct:    100,
			expectedRefund: 2500,
			expectedFee:    0,
		},
		{
			name:           "30 hours out keeps a 20 percent fee",
			price:          2500,
			canceledAt:     scheduled.Add(-30 * time.Hour),
			expectedPct:    80,
			expectedRefund: 2000,
			expectedFee:    500,
		},
		{
			name:           "15 hours out splits the price",
			price:          2500,
			canceledAt:     scheduled.Add(-15 * time.Hour),
			expectedPct:    50,
			expectedRefund: 1250,
			expectedFee:    1250,
		},
		{
			name:           "10 hours out refunds nothing",
			price:          2500,
			canceledAt:     scheduled.Add(-10 * time.Hour),
			expectedPct:    0,
			expectedRefund: 0,
			expectedFee:    2500,
		},
		{
			name:           "odd cents still reconcile at 80 percent",
			price:          33.35,
			canceledAt:     scheduled.Add(-30 * time.Hour),
			expectedPct:    80,
			expectedRefund: 26.68,
			expectedFee:    6.67,
		},
		{
			name:           "odd cents still reconcile at 50 percent",
			price:          99.99,
			canceledAt:     scheduled.Add(-15 * time.Hour),
			expectedPct:    50,
			expectedRefund: 50.00,
			expectedFee:    49.99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := QuoteRefund(tt.price, scheduled, tt.canceledAt)
			if quote.Percent != tt.expectedPct {
				t.Errorf("Percent = %d; want %d", quote.Percent, tt.expectedPct)
			}
			if quote.RefundAmount != tt.expectedRefund {
				t.Errorf("RefundAmount = %v; want %v", quote.RefundAmount, tt.expectedRefund)
			}
			if quote.Fee != tt.expectedFee {
				t.Errorf("Fee = %v; want %v", quote.Fee, tt.expectedFee)
			}
			if quote.RefundAmount+quote.Fee != tt.price {
				t.Errorf("RefundAmount + Fee = %v; want exactly the price %v", quote.RefundAmount+quote.Fee, tt.price)
			}
		})
	}
}

func TestQuoteRefundAlwaysReconciles(t *testing.T) {
	scheduled := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	prices := []float64{0, 0.01, 10, 33.33, 99.99, 2500, 12345.67}
	offsets := []time.Duration{-72 * time.Hour, -48 * time.Hour, -30 * time.Hour, -24 * time.Hour, -15 * time.Hour, -12 * time.Hour, -1 * time.Hour, 2 * time.Hour}

	for _, price := range prices {
		for _, offset := range offsets {
			quote := QuoteRefund(price, scheduled, scheduled.Add(offset))
			if got := RoundCents(quote.RefundAmount + quote.Fee); got != RoundCents(price) {
				t.Errorf("QuoteRefund(%v, offset %v): refund %v + fee %v != price %v",
					price, offset, quote.RefundAmount, quote.Fee, price)
			}
		}
	}
}
