package valuation

import "math"

// Unknown is the provider's sentinel for a missing model value.
const Unknown = -999.0

// Known reports whether an external model value is available.
func Known(external float64) bool {
	return !math.IsNaN(external) && external != Unknown
}

// Rating returns the contract mispricing in percent, rounded to 2 decimals.
//
// Without an external model value, it compares the Black-Scholes value to the
// ask. Otherwise it compares the average of both model values to the ask.
// When the ratio is undefined the rating is blackScholes - ask.
func Rating(blackScholes, external, ask float64) float64 {
	if !Known(external) {
		if blackScholes == 0 {
			return blackScholes - ask
		}
		return round((blackScholes-ask)/blackScholes*100, 2)
	}
	if ask == 0 {
		return blackScholes - ask
	}
	return round(100*((blackScholes+external)/(2*ask)-1), 2)
}

// Valuable reports whether a model values the contract above its ask.
func Valuable(blackScholes, external, ask float64) bool {
	return blackScholes > ask || (Known(external) && external > ask)
}
