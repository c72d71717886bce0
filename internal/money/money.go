package money

import (
	"fmt"
	"math"
)

// Currency identifies the settlement currency of a booking
type Currency string

const (
	CurrencyLKR Currency = "LKR"
	CurrencyUSD Currency = "USD"
)

// Approximate LKR per USD, used for display estimates only.
// Charges are always settled in the booking's own currency.
const lkrPerUSD = 300.0

// RoundCents rounds an amount to the smallest currency unit (2 decimals)
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatPlain renders an amount with exactly two decimal places and no
// symbol. This is the representation mandated by the regional gateway's
// digest and form fields, so it must stay byte-exact.
func FormatPlain(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// Format renders an amount with its currency code for display
func Format(amount float64, currency Currency) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}

// EstimateGatewayFee returns the displayed processing fee for an amount.
// Display/estimation only; settlement fees are applied by the provider.
func EstimateGatewayFee(amount float64, currency Currency, internationalCard bool) float64 {
	switch currency {
	case CurrencyLKR:
		return RoundCents(amount*0.035 + 5)
	case CurrencyUSD:
		rate := 0.029
		if internationalCard {
			rate = 0.039
		}
		return RoundCents(amount*rate + 0.30)
	}
	return 0
}

// ConvertEstimate converts between the two supported currencies at a fixed
// approximate rate. Display only, never used to settle a charge.
func ConvertEstimate(amount float64, from, to Currency) float64 {
	if from == to {
		return amount
	}
	switch {
	case from == CurrencyUSD && to == CurrencyLKR:
		return RoundCents(amount * lkrPerUSD)
	case from == CurrencyLKR && to == CurrencyUSD:
		return RoundCents(amount / lkrPerUSD)
	}
	return amount
}

// MinorUnits converts an amount to integer minor units (cents) as required
// by the international gateway's intent API.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
