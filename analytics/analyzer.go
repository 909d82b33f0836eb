// Package analytics computes percent changes over lookback windows and
// backtests dollar-cost-averaging strategies from historical price series.
package analytics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/etnz/screener"
	"github.com/etnz/screener/date"
	"github.com/rs/zerolog/log"
)

// Source provides historical price series.
//
// Prices fails with screener.ErrSymbolNotFound when the symbol is unknown and
// with screener.ErrNoData when there is no record in the range. Any other error
// is considered transient and retried.
type Source interface {
	Prices(ctx context.Context, symbol string, r date.Range) (*screener.Series, error)
}

// Policy bounds the retries of transient errors.
type Policy struct {
	MaxTries uint            // 0 means DefaultMaxTries
	BackOff  backoff.BackOff // nil means exponential
}

// DefaultMaxTries is the number of attempts used when the Policy does not set one.
const DefaultMaxTries = 5

func (p Policy) options() []backoff.RetryOption {
	tries, b := p.MaxTries, p.BackOff
	if tries == 0 {
		tries = DefaultMaxTries
	}
	if b == nil {
		e := backoff.NewExponentialBackOff()
		e.InitialInterval = time.Second
		b = e
	}
	return []backoff.RetryOption{backoff.WithMaxTries(tries), backoff.WithBackOff(b)}
}

// Analyzer runs the analytics against a Source.
type Analyzer struct {
	Source Source
	Retry  Policy
	Today  func() date.Date // nil means date.Today
}

func (a *Analyzer) today() date.Date {
	if a.Today == nil {
		return date.Today()
	}
	return a.Today()
}

// prices fetches a series, retrying transient errors according to the policy.
func (a *Analyzer) prices(ctx context.Context, symbol string, r date.Range) (*screener.Series, error) {
	op := func() (*screener.Series, error) {
		s, err := a.Source.Prices(ctx, symbol, r)
		if errors.Is(err, screener.ErrSymbolNotFound) || errors.Is(err, screener.ErrNoData) {
			return nil, backoff.Permanent(err)
		}
		if err == nil && (s == nil || s.Len() == 0) {
			return nil, backoff.Permanent(screener.ErrNoData)
		}
		return s, err
	}
	notify := func(err error, next time.Duration) {
		log.Warn().Err(err).Str("symbol", symbol).Dur("retry_in", next).Msg("price series fetch failed")
	}
	return backoff.Retry(ctx, op, append(a.Retry.options(), backoff.WithNotify(notify))...)
}

// Normalize returns symbol with the exchange class separator '.' replaced by '-' (BRK.B -> BRK-B).
func Normalize(symbol string) string { return strings.ReplaceAll(symbol, ".", "-") }

// resolver fetches series for one symbol, switching once to the normalized
// symbol when the provider does not recognize it.
type resolver struct {
	a          *Analyzer
	symbol     string
	normalized bool
	notFound   bool
}

func (r *resolver) prices(ctx context.Context, rng date.Range) (*screener.Series, error) {
	if r.notFound {
		return nil, screener.ErrSymbolNotFound
	}
	for {
		s, err := r.a.prices(ctx, r.symbol, rng)
		if !errors.Is(err, screener.ErrSymbolNotFound) {
			return s, err
		}
		n := Normalize(r.symbol)
		if r.normalized || n == r.symbol {
			r.notFound = true
			return nil, err
		}
		log.Debug().Str("symbol", r.symbol).Str("normalized", n).Msg("symbol not found, retrying normalized")
		r.symbol, r.normalized = n, true
	}
}
