package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/etnz/screener"
	"github.com/etnz/screener/date"
	"github.com/rs/zerolog/log"
)

// IntradaySource provides intraday candles, oldest first.
type IntradaySource interface {
	Intraday(ctx context.Context, symbol, interval string) ([]screener.Candle, error)
}

// Waiter paces requests, like a *rate.Limiter.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Performance is the outcome of an intraday simulation on one symbol.
type Performance struct {
	Symbol      string
	Start, Stop date.Date
	Capital     screener.Money
	Value       screener.Money
	CAGR        float64 // NaN when Start is Stop
}

// Gain returns Value - Capital.
func (p *Performance) Gain() screener.Money { return p.Value.Sub(p.Capital) }

// Portfolio is capital split evenly across symbols and simulated intraday.
type Portfolio struct {
	Capital  screener.Money
	Holdings []*Performance
	Skipped  []string       // symbols without data, their share is kept as cash
	Value    screener.Money // cash in hand at the end
	CAGR     float64        // over the dates of the first holding
}

// weight is the share of capital invested on day i of n, 1-based.
// Earlier days get more, and the weights of the n days sum to 1.
func weight(n, i int) float64 {
	return 2 * float64(n-i+1) / float64(n*(n+1))
}

// CAGR returns the compound annual growth rate from starting to ending over
// the days between start and stop, rounded to 3 decimals.
func CAGR(starting, ending float64, start, stop date.Date) float64 {
	days := stop.Sub(start)
	if days <= 0 || starting == 0 {
		return math.NaN()
	}
	return math.Round((math.Pow(ending/starting, 365/float64(days))-1)*1000) / 1000
}

// SimulateIntraday invests capital in symbol over the trading days of candles.
//
// Each day adds its weight of capital to the cash, spreads the cash evenly
// over the day's candles at their open, and sells everything at the day's last
// close. It returns nil if there is no candle with a positive open.
func SimulateIntraday(symbol string, candles []screener.Candle, capital float64) *Performance {
	var days [][]screener.Candle
	for _, c := range candles {
		if c.Open <= 0 {
			continue
		}
		n := len(days)
		if n == 0 || date.Of(days[n-1][0].Time) != date.Of(c.Time) {
			days = append(days, nil)
			n++
		}
		days[n-1] = append(days[n-1], c)
	}
	if len(days) == 0 {
		return nil
	}

	cash := 0.0
	for i, day := range days {
		cash += capital * weight(len(days), i+1)
		split := cash / float64(len(day))
		shares := 0.0
		for _, c := range day {
			shares += split / c.Open
		}
		cash = shares * day[len(day)-1].Close
	}

	p := &Performance{
		Symbol:  symbol,
		Start:   date.Of(days[0][0].Time),
		Stop:    date.Of(days[len(days)-1][0].Time),
		Capital: screener.USD(capital),
		Value:   screener.USD(cash),
	}
	p.CAGR = CAGR(capital, cash, p.Start, p.Stop)
	return p
}

// IntradayPerformance splits capital evenly across symbols and simulates each
// of them on its intraday series. Requests are paced by pace.
//
// Symbols unknown to src or without data are skipped. Any other error stops
// the simulation.
func IntradayPerformance(ctx context.Context, src IntradaySource, pace Waiter, symbols []string, interval string, capital float64) (*Portfolio, error) {
	if len(symbols) == 0 {
		return nil, errors.New("no symbol to simulate")
	}
	split := capital / float64(len(symbols))
	p := &Portfolio{Capital: screener.USD(capital), Value: screener.USD(0), CAGR: math.NaN()}
	for _, symbol := range symbols {
		if err := pace.Wait(ctx); err != nil {
			return nil, err
		}
		candles, err := src.Intraday(ctx, symbol, interval)
		switch {
		case errors.Is(err, screener.ErrSymbolNotFound), errors.Is(err, screener.ErrNoData):
			log.Warn().Err(err).Str("symbol", symbol).Msg("skipped")
			candles = nil
		case err != nil:
			return nil, fmt.Errorf("intraday %s: %w", symbol, err)
		}
		perf := SimulateIntraday(symbol, candles, split)
		if perf == nil {
			p.Skipped = append(p.Skipped, symbol)
			p.Value = p.Value.Add(screener.USD(split))
			continue
		}
		p.Holdings = append(p.Holdings, perf)
		p.Value = p.Value.Add(perf.Value)
	}
	if len(p.Holdings) > 0 {
		first := p.Holdings[0]
		p.CAGR = CAGR(capital, p.Value.AsFloat(), first.Start, first.Stop)
	}
	return p, nil
}
