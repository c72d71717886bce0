package money

import "time"

// RefundQuote is the outcome of applying the cancellation policy to a
// booking at a given instant.
type RefundQuote struct {
	Percent      int
	RefundAmount float64
	Fee          float64
	HoursBefore  float64
}

// refundTiers maps hours-before-session thresholds to refund percentages.
// This table is the single definition of the cancellation policy; every
// caller must go through QuoteRefund.
var refundTiers = []struct {
	MinHours float64
	Percent  int
}{
	{48, 100},
	{24, 80},
	{12, 50},
	{0, 0},
}

// RefundPercent returns the refund percentage for a cancellation made the
// given number of hours before the session. Boundary values resolve to the
// higher tier; negative hours (session already started or passed) yield 0.
func RefundPercent(hoursBefore float64) int {
	for _, tier := range refundTiers {
		if hoursBefore >= tier.MinHours {
			return tier.Percent
		}
	}
	return 0
}

// QuoteRefund applies the tiered cancellation policy to a booking priced at
// price and scheduled at scheduledAt, canceled at canceledAt.
// The returned quote always reconciles exactly: RefundAmount + Fee == price.
func QuoteRefund(price float64, scheduledAt, canceledAt time.Time) RefundQuote {
	hoursBefore := scheduledAt.Sub(canceledAt).Hours()
	pct := RefundPercent(hoursBefore)

	refund := RoundCents(price * float64(pct) / 100)
	fee := RoundCents(price - refund)

	return RefundQuote{
		Percent:      pct,
		RefundAmount: refund,
		Fee:          fee,
		HoursBefore:  hoursBefore,
	}
}
