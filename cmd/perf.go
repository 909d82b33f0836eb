package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/etnz/screener/alphavantage"
	"github.com/etnz/screener/analytics"
	"github.com/etnz/screener/renderer"
	"github.com/etnz/screener/update"
	"github.com/google/subcommands"
)

type perfCmd struct {
	symbols  string
	capital  float64
	interval string
	rpm      int
}

func (*perfCmd) Name() string     { return "perf" }
func (*perfCmd) Synopsis() string { return "simulate an intraday portfolio over a list of symbols" }
func (*perfCmd) Usage() string {
	return `scr perf [-symbols FILE] [-capital AMOUNT] [-interval INTERVAL] [-rpm N]

  Splits capital evenly across the symbols of FILE, invests it over their
  intraday history and reports the value and CAGR of each. See 'scr topic perf'.
`
}

func (c *perfCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "`FILE` of symbols, one per line (default from the settings)")
	f.Float64Var(&c.capital, "capital", 2000, "starting capital in dollars")
	f.StringVar(&c.interval, "interval", "15min", "candle `INTERVAL`: "+strings.Join(alphavantage.Intervals, ", "))
	f.IntVar(&c.rpm, "rpm", 5, "intraday requests per minute")
}

// readSymbols returns the symbols of r, one per line. Blank lines and lines
// starting with # are ignored.
func readSymbols(r io.Reader) ([]string, error) {
	var symbols []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, strings.ToUpper(line))
	}
	return symbols, scanner.Err()
}

func (c *perfCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !slices.Contains(alphavantage.Intervals, c.interval) {
		fmt.Fprintf(os.Stderr, "Error: invalid interval %q: want one of %s\n", c.interval, strings.Join(alphavantage.Intervals, ", "))
		return subcommands.ExitUsageError
	}
	if c.capital <= 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid capital %v: must be positive\n", c.capital)
		return subcommands.ExitUsageError
	}
	if settings.AlphaVantageKey == "" {
		return failed(errors.New("an Alpha Vantage API key is required, see 'scr topic config'"))
	}
	path := c.symbols
	if path == "" {
		path = settings.Symbols
	}
	file, err := os.Open(path)
	if err != nil {
		return failed(err)
	}
	defer file.Close()
	symbols, err := readSymbols(file)
	if err != nil {
		return failed(fmt.Errorf("cannot read symbols %q: %w", path, err))
	}

	src := alphavantage.New(settings.AlphaVantageKey)
	p, err := analytics.IntradayPerformance(ctx, src, update.NewLimiter(c.rpm), symbols, c.interval, c.capital)
	if err != nil {
		return failed(err)
	}
	printMarkdown(fmt.Sprintf("# Portfolio data for %s\n\n%s", path, renderer.Performance(p)))
	return subcommands.ExitSuccess
}
