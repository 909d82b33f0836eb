package update

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/etnz/screener"
	"github.com/etnz/screener/analytics"
	"github.com/etnz/screener/date"
	"github.com/etnz/screener/store"
	"github.com/etnz/screener/valuation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var today = date.New(2025, time.March, 31)

type fakeLister []screener.EquityListing

func (f fakeLister) Listings(ctx context.Context) ([]screener.EquityListing, error) { return f, nil }

// fakeSource serves the same rising series for every known symbol.
type fakeSource map[string]bool

func (f fakeSource) Prices(ctx context.Context, symbol string, r date.Range) (*screener.Series, error) {
	if !f[symbol] {
		return nil, screener.ErrSymbolNotFound
	}
	s := new(screener.Series)
	start := date.New(2025, time.January, 1)
	for day := start; !day.After(today); day = day.Add(1) {
		if r.Contains(day) {
			s.Append(day, screener.Bar{Open: 100, AdjClose: 100 + float64(day.Sub(start))})
		}
	}
	if s.Len() == 0 {
		return nil, screener.ErrNoData
	}
	return s, nil
}

type fakeChains struct {
	quotes map[string][]valuation.Quote
	calls  []string
}

func (f *fakeChains) Chains(ctx context.Context, symbol string, to date.Date) ([]valuation.Quote, error) {
	f.calls = append(f.calls, symbol)
	return f.quotes[symbol], nil
}

func newUpdater(t *testing.T, symbols ...string) *Updater {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	var listings fakeLister
	known := fakeSource{}
	for _, s := range symbols {
		listings = append(listings, screener.EquityListing{Symbol: s, CompanyName: s + " Inc."})
		known[s] = true
	}
	return &Updater{
		Store:  st,
		Lister: listings,
		Analyzer: &analytics.Analyzer{
			Source: known,
			Retry:  analytics.Policy{MaxTries: 2, BackOff: &backoff.ZeroBackOff{}},
			Today:  func() date.Date { return today },
		},
		Limiter: rate.NewLimiter(rate.Inf, 1),
		Today:   func() date.Date { return today },
	}
}

func TestListingsAndEquities(t *testing.T) {
	ctx := context.Background()
	u := newUpdater(t, "AAPL", "MSFT")

	rep, err := u.Listings(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Added: 2}, rep)

	rep, err = u.Equities(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, Report{Added: 2}, rep)

	equities, err := u.Store.Equities(ctx, nil, []store.Order{{Column: "Symbol", Direction: store.Ascending}})
	require.NoError(t, err)
	require.Len(t, equities, 2)
	e := equities[0]
	assert.Equal(t, "AAPL", e.Symbol)
	assert.Equal(t, "AAPL Inc.", e.CompanyName)
	assert.Equal(t, screener.Percent(89), e.Change("1D"))
	assert.True(t, e.Change("1Y").IsNA(), "series starts too late for 1Y")
	assert.False(t, e.Change("Max").IsNA())

	// nothing left to add, and nothing is stale before today.
	rep, err = u.Equities(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, Report{}, rep)

	// rows are stamped with the wall clock.
	rep, err = u.Equities(ctx, date.Today().Add(2))
	require.NoError(t, err)
	assert.Equal(t, Report{Modified: 2}, rep)
}

func TestEquity(t *testing.T) {
	ctx := context.Background()
	u := newUpdater(t, "AAPL")
	_, err := u.Listings(ctx)
	require.NoError(t, err)

	rep, err := u.Equity(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, Report{Added: 1}, rep)

	rep, err = u.Equity(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, Report{Modified: 1}, rep)

	_, err = u.Equity(ctx, "ZZZ")
	assert.ErrorIs(t, err, screener.ErrSymbolNotFound)
}

func TestOptions(t *testing.T) {
	ctx := context.Background()
	u := newUpdater(t, "AAPL", "MSFT")
	_, err := u.Listings(ctx)
	require.NoError(t, err)

	expired := &screener.Option{CompanySymbol: "AAPL", Type: "CALL", Description: "AAPL Jan 17 2020 150 Call", Symbol: "AAPL_011720C150",
		BlackScholesValue: 2, ExternalModelValue: math.NaN(), Premium: 1, ContractRating: 100}
	alive := &screener.Option{CompanySymbol: "MSFT", Type: "CALL", Description: "MSFT Jan 17 2030 150 Call", Symbol: "MSFT_011730C150",
		BlackScholesValue: 2, ExternalModelValue: 3, Premium: 1, ContractRating: 150}
	require.NoError(t, u.Store.AddNewSecurity(ctx, expired))
	require.NoError(t, u.Store.AddNewSecurity(ctx, alive))

	quote := valuation.Quote{CompanySymbol: "AAPL", PutCall: "PUT", Description: "AAPL Mar 31 2026 100 Put", Symbol: "AAPL_033126P100",
		DaysToExpiration: 365, UnderlyingPrice: 100, StrikePrice: 100, InterestRate: 5, Volatility: 20, TheoreticalValue: math.NaN(), Ask: 5}
	expensive := quote
	expensive.Symbol, expensive.Ask = "AAPL_033126P100X", 1000
	gone := quote
	gone.Symbol, gone.DaysToExpiration = "AAPL_033126P100Z", 0

	chains := &fakeChains{quotes: map[string][]valuation.Quote{"AAPL": {quote, expensive, gone}}}
	u.Chains = chains

	rep, err := u.Options(ctx, today.AddMonths(3))
	require.NoError(t, err)
	assert.Equal(t, Report{Added: 1, Deleted: 1}, rep)
	assert.Equal(t, []string{"AAPL"}, chains.calls, "MSFT already has options")

	options, err := u.Store.Options(ctx, nil, []store.Order{{Column: "Symbol", Direction: store.Ascending}})
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "AAPL_033126P100", options[0].Symbol)
	assert.Equal(t, "PUT", options[0].Type)
	assert.True(t, math.IsNaN(options[0].ExternalModelValue))
	assert.Equal(t, "MSFT_011730C150", options[1].Symbol)
}

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(0)
	assert.Equal(t, DefaultRequestsPerMinute, l.Burst())
	assert.InDelta(t, float64(DefaultRequestsPerMinute)/60, float64(l.Limit()), 1e-6)
}
