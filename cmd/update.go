package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/screener/analytics"
	"github.com/etnz/screener/date"
	"github.com/etnz/screener/eodhd"
	"github.com/etnz/screener/nasdaq"
	"github.com/etnz/screener/store"
	"github.com/etnz/screener/tdameritrade"
	"github.com/etnz/screener/update"
	"github.com/google/subcommands"
)

type updateCmd struct {
	all, listings, equities, options bool
	single                           string
	cutoff                           string
	horizon                          string
	rpm                              int
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "refresh the database from the market data providers" }
func (*updateCmd) Usage() string {
	return `scr update [-all|-listings|-equities|-options|-single SYMBOL] [-cutoff DATE] [-horizon RANGE] [-rpm N]

  Refreshes listings, equities and options. See 'scr topic update'.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "update listings, equities and options")
	f.BoolVar(&c.listings, "listings", false, "scrape the listed stocks and ETFs")
	f.BoolVar(&c.equities, "equities", false, "add missing equities and recompute the stale ones")
	f.BoolVar(&c.options, "options", false, "delete expired options and fetch new chains")
	f.StringVar(&c.single, "single", "", "recompute a single `SYMBOL`")
	f.StringVar(&c.cutoff, "cutoff", "", "equities updated before this `DATE` are stale (default today)")
	f.StringVar(&c.horizon, "horizon", "3m", "fetch options expiring within this `RANGE`")
	f.IntVar(&c.rpm, "rpm", update.DefaultRequestsPerMinute, "options chains requests per minute")
}

func (c *updateCmd) updater(st *store.Store) (*update.Updater, error) {
	u := &update.Updater{
		Store:   st,
		Lister:  nasdaq.New(settings.CacheDir),
		Limiter: update.NewLimiter(c.rpm),
	}
	if c.all || c.equities || c.single != "" {
		if settings.EODHDKey == "" {
			return nil, errors.New("an EODHD API key is required, see 'scr topic config'")
		}
		u.Analyzer = &analytics.Analyzer{Source: eodhd.New(settings.EODHDKey, settings.CacheDir)}
	}
	if c.all || c.options {
		if settings.TDAmeritradeKey == "" {
			return nil, errors.New("a TD Ameritrade API key is required, see 'scr topic config'")
		}
		u.Chains = tdameritrade.New(settings.TDAmeritradeKey)
	}
	return u, nil
}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if !(c.all || c.listings || c.equities || c.options || c.single != "") {
		fmt.Println("Nothing to update: use -all, -listings, -equities, -options or -single.")
		return subcommands.ExitUsageError
	}
	cutoff := date.Today()
	if c.cutoff != "" {
		var err error
		if cutoff, err = date.Parse(c.cutoff); err != nil {
			return failed(err)
		}
	}
	horizon, err := date.ParseLookback(c.horizon)
	if err != nil {
		return failed(err)
	}

	err = withStore(ctx, args, func(st *store.Store) error {
		u, err := c.updater(st)
		if err != nil {
			return err
		}
		report := func(task string, rep update.Report, err error) error {
			if err != nil {
				return fmt.Errorf("%s: %w", task, err)
			}
			fmt.Printf("%s: %s\n", task, rep)
			return nil
		}
		if c.single != "" {
			rep, err := u.Equity(ctx, c.single)
			return report(c.single, rep, err)
		}
		if c.all || c.listings {
			rep, err := u.Listings(ctx)
			if err := report("listings", rep, err); err != nil {
				return err
			}
		}
		if c.all || c.equities {
			rep, err := u.Equities(ctx, cutoff)
			if err := report("equities", rep, err); err != nil {
				return err
			}
		}
		if c.all || c.options {
			rep, err := u.Options(ctx, horizon.Ahead(date.Today()))
			if err := report("options", rep, err); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return failed(err)
	}
	return subcommands.ExitSuccess
}
