package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/etnz/screener"
	"github.com/etnz/screener/date"
)

// Ratings is the investment rating scale, best first.
var Ratings = []string{"AAA", "AA", "A", "BBB", "BB", "B", "CCC", "CC", "C", "DDD", "DD", "D"}

// Result is the outcome of a dollar-cost-averaging backtest.
type Result struct {
	Symbol          string
	StartDate       date.Date
	Years           float64
	MoneySpent      float64
	SharesPurchased float64
	MarketValue     float64
	NetProfit       float64
	Rating          string
}

// Backtest simulates buying principal worth of shares at the first open of the
// window, then periodic worth at the adjusted close every periodDays days.
//
// A step falling on a day without trading buys on the next trading day, unless
// the next step is reached first. It returns nil, nil when the series cannot be
// retrieved.
func (a *Analyzer) Backtest(ctx context.Context, symbol string, start date.Lookback, principal, periodic float64, periodDays int) (*Result, error) {
	if periodDays <= 0 {
		return nil, fmt.Errorf("invalid backtest period %d days: must be positive", periodDays)
	}
	today := a.today()
	res := &resolver{a: a, symbol: symbol}
	s, err := res.prices(ctx, start.Range(today))
	switch {
	case errors.Is(err, screener.ErrSymbolNotFound), errors.Is(err, screener.ErrNoData):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return Simulate(symbol, s, today, principal, periodic, periodDays), nil
}

// Simulate runs the backtest on a series. It returns nil when the series is
// empty or starts with a non positive open.
func Simulate(symbol string, s *screener.Series, today date.Date, principal, periodic float64, periodDays int) *Result {
	if s == nil || s.Len() == 0 || periodDays <= 0 {
		return nil
	}
	firstDay, first := s.First()
	lastDay, last := s.Latest()
	if first.Open <= 0 {
		return nil
	}

	shares := principal / first.Open
	spent := principal

	end := lastDay
	if today.Before(end) {
		end = today
	}
	for step := firstDay.Add(periodDays); !step.After(end); step = step.Add(periodDays) {
		for d := range periodDays {
			day := step.Add(d)
			if day.After(end) {
				break
			}
			if bar, ok := s.Get(day); ok && bar.AdjClose > 0 {
				shares += periodic / bar.AdjClose
				spent += periodic
				break
			}
		}
	}

	value := shares * last.AdjClose
	profit := value - spent
	years := round2(float64(lastDay.Sub(firstDay)) / 365)
	return &Result{
		Symbol:          strings.ToUpper(symbol),
		StartDate:       firstDay,
		Years:           years,
		MoneySpent:      spent,
		SharesPurchased: shares,
		MarketValue:     value,
		NetProfit:       profit,
		Rating:          Grade(profit / spent / years),
	}
}

// Grade maps x onto Ratings through a sigmoid: 0 is the middle of the scale,
// large positive values are AAA and large negative values D. NaN counts as 0.
func Grade(x float64) string {
	if math.IsNaN(x) {
		x = 0
	}
	n := float64(len(Ratings))
	i := int(math.Floor(n - sigmoid(x)*n))
	i = max(0, min(i, len(Ratings)-1))
	return Ratings[i]
}

// sigmoid is e^x/(1+e^x), computed without overflow.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
