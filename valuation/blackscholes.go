// Package valuation prices European options with the Black-Scholes model and
// rates contracts against their market ask.
package valuation

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain is returned when the model inputs are outside of its domain.
var ErrDomain = errors.New("black-scholes domain error")

// Inputs of the Black-Scholes model.
//
// R, T and O are decimals: a 5% rate is 0.05, 30 days is 30/365.
type Inputs struct {
	S float64 // underlying price
	X float64 // strike price
	R float64 // annualized risk-free rate
	T float64 // time to expiry in years
	O float64 // annualized volatility
}

func (in Inputs) check() error {
	if in.T <= 0 || in.O <= 0 || in.S <= 0 || in.X <= 0 {
		return fmt.Errorf("%w: s=%v x=%v t=%v o=%v", ErrDomain, in.S, in.X, in.T, in.O)
	}
	return nil
}

// Call returns the value of a European call, rounded to 3 decimals.
func Call(in Inputs) (float64, error) {
	if err := in.check(); err != nil {
		return 0, err
	}
	return round(call(in), 3), nil
}

// Put returns the value of a European put derived from the call by put-call
// parity, rounded to 3 decimals.
func Put(in Inputs) (float64, error) {
	c, err := Call(in)
	if err != nil {
		return 0, err
	}
	return round(c+in.X*math.Exp(-in.R*in.T)-in.S, 3), nil
}

func call(in Inputs) float64 {
	d1 := (math.Log(in.S/in.X) + in.T*(in.R+in.O*in.O/2)) / (in.O * math.Sqrt(in.T))
	d2 := d1 - in.O*math.Sqrt(in.T)
	return in.S*normCdf(d1) - in.X*math.Exp(-in.R*in.T)*normCdf(d2)
}

// normCdf is the standard normal cumulative distribution function.
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// round rounds x half away from zero to n decimals.
func round(x float64, n int) float64 {
	p := math.Pow10(n)
	return math.Round(x*p) / p
}
