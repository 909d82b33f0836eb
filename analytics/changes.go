package analytics

import (
	"context"
	"errors"
	"math"

	"github.com/etnz/screener"
	"github.com/etnz/screener/date"
)

// Tolerance is the number of days a series bound may deviate from the requested window.
const Tolerance = 5

// PercentChanges returns the percent change of symbol over each lookback
// token, in order. A window without usable data is N/A.
//
// It fails only on malformed tokens, when transient errors exhaust the retry
// policy, or when ctx ends.
func (a *Analyzer) PercentChanges(ctx context.Context, symbol string, tokens []string) ([]screener.Change, error) {
	lookbacks := make([]date.Lookback, len(tokens))
	for i, token := range tokens {
		l, err := date.ParseLookback(token)
		if err != nil {
			return nil, err
		}
		lookbacks[i] = l
	}

	today := a.today()
	res := &resolver{a: a, symbol: symbol}
	changes := make([]screener.Change, len(lookbacks))
	for i, l := range lookbacks {
		rng := l.Range(today)
		s, err := res.prices(ctx, rng)
		switch {
		case errors.Is(err, screener.ErrSymbolNotFound), errors.Is(err, screener.ErrNoData):
			changes[i] = screener.NotAvailable()
			continue
		case err != nil:
			return nil, err
		}
		changes[i] = PercentChange(s, rng)
	}
	return changes, nil
}

// PercentChange returns round((lastAdjClose - firstOpen) / firstOpen * 100, 2).
//
// It is N/A when the series is empty, when the first open is zero, or when
// both bounds of the series are more than Tolerance days away from rng's. A
// series matching either bound is kept, so a security listed after rng.From
// reports its change since the first trade.
func PercentChange(s *screener.Series, rng date.Range) screener.Change {
	if s == nil || s.Len() == 0 {
		return screener.NotAvailable()
	}
	first, firstBar := s.First()
	last, lastBar := s.Latest()
	if abs(first.Sub(rng.From)) > Tolerance && abs(last.Sub(rng.To)) > Tolerance {
		return screener.NotAvailable()
	}
	if firstBar.Open == 0 {
		return screener.NotAvailable()
	}
	return screener.Percent(round2((lastBar.AdjClose - firstBar.Open) / firstBar.Open * 100))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
