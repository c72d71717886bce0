package money

import "testing"

func TestRoundCents(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"already exact", 10.50, 10.50},
		{"rounds half up", 10.005, 10.01},
		{"rounds down", 10.004, 10.00},
		{"float artifact from multiplication", 33.35 * 0.8, 26.68},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundCents(tt.input); got != tt.expected {
				t.Errorf("RoundCents(%v) = %v; want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatPlain(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"whole number gets two decimals", 1000, "1000.00"},
		{"single decimal padded", 10.5, "10.50"},
		{"two decimals preserved", 10.55, "10.55"},
		{"no thousands separator", 123456.78, "123456.78"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPlain(tt.input); got != tt.expected {
				t.Errorf("FormatPlain(%v) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEstimateGatewayFee(t *testing.T) {
	tests := []struct {
		name          string
		amount        float64
		currency      Currency
		international bool
		expected      float64
	}{
		{"LKR flat plus percentage", 1000, CurrencyLKR, false, 40.00},
		{"LKR ignores card origin", 1000, CurrencyLKR, true, 40.00},
		{"USD domestic card", 100, CurrencyUSD, false, 3.20},
		{"USD international card", 100, CurrencyUSD, true, 4.20},
		{"unknown currency estimates zero", 100, Currency("EUR"), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateGatewayFee(tt.amount, tt.currency, tt.international); got != tt.expected {
				t.Errorf("EstimateGatewayFee(%v, %s, %v) = %v; want %v",
					tt.amount, tt.currency, tt.international, got, tt.expected)
			}
		})
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected int64
	}{
		{"whole dollars", 25, 2500},
		{"with cents", 19.99, 1999},
		{"float artifact", 0.1 + 0.2, 30},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinorUnits(tt.input); got != tt.expected {
				t.Errorf("MinorUnits(%v) = %d; want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertEstimate(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		from, to Currency
		expected float64
	}{
		{"same currency is identity", 100, CurrencyUSD, CurrencyUSD, 100},
		{"USD to LKR", 10, CurrencyUSD, CurrencyLKR, 3000},
		{"LKR to USD", 3000, CurrencyLKR, CurrencyUSD, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertEstimate(tt.amount, tt.from, tt.to); got != tt.expected {
				t.Errorf("ConvertEstimate(%v, %s, %s) = %v; want %v", tt.amount, tt.from, tt.to, got, tt.expected)
			}
		})
	}
}
