// Package update refreshes the security database from the market data providers.
package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/screener"
	"github.com/etnz/screener/analytics"
	"github.com/etnz/screener/date"
	"github.com/etnz/screener/store"
	"github.com/etnz/screener/valuation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute paces the options chains requests.
const DefaultRequestsPerMinute = 119

// Lister lists the securities traded on the market.
type Lister interface {
	Listings(ctx context.Context) ([]screener.EquityListing, error)
}

// Chains provides the options chain of a symbol, for contracts expiring up to 'to'.
type Chains interface {
	Chains(ctx context.Context, symbol string, to date.Date) ([]valuation.Quote, error)
}

// NewLimiter returns a limiter allowing n requests per rolling minute.
func NewLimiter(n int) *rate.Limiter {
	if n <= 0 {
		n = DefaultRequestsPerMinute
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}

// Updater writes into Store what it gets from the providers.
//
// Every update saves the store after each symbol, so that an interrupted
// update keeps what was done and resumes from there.
type Updater struct {
	Store    *store.Store
	Lister   Lister
	Analyzer *analytics.Analyzer
	Chains   Chains
	Limiter  *rate.Limiter    // paces Chains, NewLimiter(DefaultRequestsPerMinute) if nil
	Today    func() date.Date // date.Today if nil
}

// Report counts the rows changed by an update.
type Report struct {
	Added, Modified, Deleted int
}

func (r Report) String() string {
	return fmt.Sprintf("%d added, %d modified, %d deleted", r.Added, r.Modified, r.Deleted)
}

func (u *Updater) today() date.Date {
	if u.Today == nil {
		return date.Today()
	}
	return u.Today()
}

// logger returns a logger tagged with a new run id.
func logger(task string) zerolog.Logger {
	return log.With().Str("run", uuid.NewString()).Str("task", task).Logger()
}

// Listings adds every listed security.
func (u *Updater) Listings(ctx context.Context) (Report, error) {
	var rep Report
	l := logger("listings")
	listings, err := u.Lister.Listings(ctx)
	if err != nil {
		return rep, fmt.Errorf("cannot list securities: %w", err)
	}
	l.Info().Int("count", len(listings)).Msg("listed")
	for i := range listings {
		if err := u.Store.AddNewSecurity(ctx, &listings[i]); err != nil {
			return rep, err
		}
		rep.Added++
	}
	return rep, u.Store.Save()
}

// changes computes a fresh equity for symbol.
func (u *Updater) changes(ctx context.Context, symbol, company string) (*screener.Equity, error) {
	changes, err := u.Analyzer.PercentChanges(ctx, symbol, screener.Ranges)
	if err != nil {
		return nil, fmt.Errorf("cannot compute %s changes: %w", symbol, err)
	}
	e := &screener.Equity{Symbol: symbol, CompanyName: company}
	copy(e.Changes[:], changes)
	return e, nil
}

// Equities adds an equity for every listing without one, then recomputes the
// equities last updated before cutoff.
func (u *Updater) Equities(ctx context.Context, cutoff date.Date) (Report, error) {
	var rep Report
	l := logger("equities")

	missing, err := u.Store.MissingEquities(ctx)
	if err != nil {
		return rep, err
	}
	l.Info().Int("count", len(missing)).Msg("missing equities")
	for i, m := range missing {
		e, err := u.changes(ctx, m.Symbol, m.CompanyName)
		if err != nil {
			return rep, err
		}
		if err := u.Store.AddNewSecurity(ctx, e); err != nil {
			return rep, err
		}
		if err := u.Store.Save(); err != nil {
			return rep, err
		}
		rep.Added++
		l.Debug().Str("symbol", m.Symbol).Int("done", i+1).Int("total", len(missing)).Msg("added")
	}

	stale, err := u.Store.Stale(ctx, cutoff)
	if err != nil {
		return rep, err
	}
	l.Info().Int("count", len(stale)).Stringer("cutoff", cutoff).Msg("stale equities")
	for i, s := range stale {
		n, err := u.modify(ctx, s.Symbol, s.CompanyName)
		if err != nil {
			return rep, err
		}
		rep.Modified += n
		l.Debug().Str("symbol", s.Symbol).Int("done", i+1).Int("total", len(stale)).Msg("modified")
	}
	l.Info().Stringer("report", rep).Msg("equities updated")
	return rep, nil
}

func (u *Updater) modify(ctx context.Context, symbol, company string) (int, error) {
	e, err := u.changes(ctx, symbol, company)
	if err != nil {
		return 0, err
	}
	n, err := u.Store.ModifySecurities(ctx, e, store.Condition{Column: "Symbol", Op: store.Equal, Value: symbol})
	if err != nil {
		return 0, err
	}
	return int(n), u.Store.Save()
}

// Equity recomputes a single equity, adding it when it is only listed.
// It fails with screener.ErrSymbolNotFound when the symbol is not listed.
func (u *Updater) Equity(ctx context.Context, symbol string) (Report, error) {
	var rep Report
	symbol = strings.ToUpper(symbol)
	bySymbol := []store.Condition{{Column: "Symbol", Op: store.Equal, Value: symbol}}

	equities, err := u.Store.Equities(ctx, bySymbol, nil)
	if err != nil {
		return rep, err
	}
	if len(equities) > 0 {
		rep.Modified, err = u.modify(ctx, symbol, equities[0].CompanyName)
		return rep, err
	}

	listings, err := u.Store.Listings(ctx, bySymbol, nil)
	if err != nil {
		return rep, err
	}
	if len(listings) == 0 {
		return rep, fmt.Errorf("%s: %w", symbol, screener.ErrSymbolNotFound)
	}
	e, err := u.changes(ctx, symbol, listings[0].CompanyName)
	if err != nil {
		return rep, err
	}
	if err := u.Store.AddNewSecurity(ctx, e); err != nil {
		return rep, err
	}
	rep.Added = 1
	return rep, u.Store.Save()
}

// Options deletes the expired options, then fetches the chains of every
// listing without options and adds their valuable contracts expiring up to
// horizon. A zero horizon means no limit.
func (u *Updater) Options(ctx context.Context, horizon date.Date) (Report, error) {
	var rep Report
	l := logger("options")
	today := u.today()

	options, err := u.Store.Options(ctx, nil, nil)
	if err != nil {
		return rep, err
	}
	for _, o := range options {
		exp, err := o.Expiration()
		if err != nil {
			l.Warn().Err(err).Str("symbol", o.Symbol).Msg("cannot check expiration")
			continue
		}
		if !exp.Before(today) {
			continue
		}
		n, err := u.Store.DeleteSecurity(ctx, o)
		if err != nil {
			return rep, err
		}
		rep.Deleted += int(n)
	}
	if err := u.Store.Save(); err != nil {
		return rep, err
	}
	l.Info().Int("count", rep.Deleted).Msg("expired options deleted")

	listings, err := u.Store.ListingsWithoutOptions(ctx)
	if err != nil {
		return rep, err
	}
	limiter := u.Limiter
	if limiter == nil {
		limiter = NewLimiter(DefaultRequestsPerMinute)
	}
	l.Info().Int("count", len(listings)).Msg("listings without options")
	for i, listing := range listings {
		if err := limiter.Wait(ctx); err != nil {
			return rep, err
		}
		quotes, err := u.Chains.Chains(ctx, listing.Symbol, horizon)
		if err != nil {
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			l.Warn().Err(err).Str("symbol", listing.Symbol).Msg("skipped")
			continue
		}
		added, err := u.addValuable(ctx, quotes)
		if err != nil {
			return rep, err
		}
		rep.Added += added
		if err := u.Store.Save(); err != nil {
			return rep, err
		}
		l.Debug().Str("symbol", listing.Symbol).Int("added", added).Int("done", i+1).Int("total", len(listings)).Msg("chain")
	}
	l.Info().Stringer("report", rep).Msg("options updated")
	return rep, nil
}

// addValuable adds the valuable contracts among quotes.
func (u *Updater) addValuable(ctx context.Context, quotes []valuation.Quote) (int, error) {
	added := 0
	for _, q := range quotes {
		if q.Skip() {
			continue
		}
		o, valuable, err := valuation.Evaluate(q)
		if errors.Is(err, valuation.ErrDomain) {
			log.Debug().Err(err).Str("symbol", q.Symbol).Msg("cannot price")
			continue
		}
		if err != nil {
			return added, err
		}
		if !valuable {
			continue
		}
		if err := u.Store.AddNewSecurity(ctx, o); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
