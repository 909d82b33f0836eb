package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/etnz/screener/analytics"
	"github.com/etnz/screener/date"
	"github.com/etnz/screener/eodhd"
	"github.com/etnz/screener/renderer"
	"github.com/google/subcommands"
)

type backtestCmd struct{}

func (*backtestCmd) Name() string     { return "backtest" }
func (*backtestCmd) Synopsis() string { return "simulate a dollar-cost-averaging strategy" }
func (*backtestCmd) Usage() string {
	return `scr backtest SYMBOL [range] [principal] [periodic] [period]

  Buys principal dollars of SYMBOL at the first open of range (max by default),
  then periodic dollars every period days. Defaults are 1000, 1000 and 30.
`
}

func (c *backtestCmd) SetFlags(f *flag.FlagSet) {}

// backtestArgs are the positional arguments of the backtest command.
type backtestArgs struct {
	symbol              string
	start               date.Lookback
	principal, periodic float64
	period              int
}

func parseBacktestArgs(args []string) (backtestArgs, error) {
	a := backtestArgs{start: date.Max, principal: 1000, periodic: 1000, period: 30}
	if len(args) == 0 || len(args) > 5 {
		return a, errors.New("want SYMBOL [range] [principal] [periodic] [period]")
	}
	a.symbol = args[0]
	var err error
	if len(args) > 1 {
		if a.start, err = date.ParseLookback(args[1]); err != nil {
			return a, err
		}
	}
	if len(args) > 2 {
		if a.principal, err = strconv.ParseFloat(args[2], 64); err != nil {
			return a, fmt.Errorf("invalid principal %q: %w", args[2], err)
		}
	}
	if len(args) > 3 {
		if a.periodic, err = strconv.ParseFloat(args[3], 64); err != nil {
			return a, fmt.Errorf("invalid periodic amount %q: %w", args[3], err)
		}
	}
	if len(args) > 4 {
		if a.period, err = strconv.Atoi(args[4]); err != nil || a.period <= 0 {
			return a, fmt.Errorf("invalid period %q: want a positive number of days", args[4])
		}
	}
	return a, nil
}

func (c *backtestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args, err := parseBacktestArgs(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if settings.EODHDKey == "" {
		return failed(errors.New("an EODHD API key is required, see 'scr topic config'"))
	}
	an := &analytics.Analyzer{Source: eodhd.New(settings.EODHDKey, settings.CacheDir)}
	res, err := an.Backtest(ctx, args.symbol, args.start, args.principal, args.periodic, args.period)
	if err != nil {
		return failed(err)
	}
	printMarkdown(renderer.RenderBacktest(res))
	return subcommands.ExitSuccess
}
