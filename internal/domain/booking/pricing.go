package booking

import "math"

// PricingStrategy defines the interface for calculating rental prices.
type PricingStrategy interface {
	// Quote returns the total rental amount and required deposit in cents
	// for the given daily rate and period.
	Quote(dailyRateCents int64, period Period) (totalCents, depositCents int64)
}

// StandardPricingStrategy implements the default rental pricing logic.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// depositRate is the fraction of the total held as a deposit at confirmation.
const depositRate = 0.20

// Quote computes the rental total and deposit in cents.
//
// The total is the daily rate times the fractional length of the period in
// days, rounded up to the nearest cent. The deposit is 20% of the total but
// never less than one day's rate.
func (s *StandardPricingStrategy) Quote(dailyRateCents int64, period Period) (int64, int64) {
	total := int64(math.Ceil(float64(dailyRateCents) * period.Days()))

	deposit := int64(math.Ceil(float64(total) * depositRate))
	if deposit < dailyRateCents {
		deposit = dailyRateCents
	}
	return total, deposit
}
