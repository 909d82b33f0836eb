package analytics

import (
	"context"
	"math"
	"testing"

	"github.com/etnz/screener"
	"github.com/etnz/screener/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate(t *testing.T) {
	s := new(screener.Series)
	s.Append(date.New(2024, 1, 1), screener.Bar{Open: 10, AdjClose: 10})
	// 2024-01-31 is missing: the periodic buy happens on the next trading day.
	s.Append(date.New(2024, 2, 1), screener.Bar{Open: 20, AdjClose: 20})
	s.Append(date.New(2024, 2, 10), screener.Bar{Open: 20, AdjClose: 20})

	got := Simulate("aapl", s, date.New(2024, 2, 10), 100, 50, 30)
	require.NotNil(t, got)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, date.New(2024, 1, 1), got.StartDate)
	assert.Equal(t, 150.0, got.MoneySpent)
	assert.InDelta(t, 12.5, got.SharesPurchased, 1e-9)
	assert.InDelta(t, 250.0, got.MarketValue, 1e-9)
	assert.InDelta(t, 100.0, got.NetProfit, 1e-9)
	assert.Equal(t, 0.11, got.Years)
	assert.Equal(t, "AAA", got.Rating)
}

func TestSimulateLargeGap(t *testing.T) {
	s := new(screener.Series)
	s.Append(date.New(2024, 1, 1), screener.Bar{Open: 10, AdjClose: 10})
	s.Append(date.New(2024, 6, 1), screener.Bar{Open: 10, AdjClose: 10})

	got := Simulate("GAP", s, date.New(2024, 6, 1), 100, 100, 30)
	require.NotNil(t, got)
	// steps on Jan 31, Mar 1, Mar 31 and Apr 30 find nothing before the next
	// step, the May 30 step buys on Jun 1.
	assert.Equal(t, 200.0, got.MoneySpent)
	assert.InDelta(t, 20, got.SharesPurchased, 1e-9)
}

func TestSimulateStopsAtToday(t *testing.T) {
	s := daily(date.New(2024, 1, 1), date.New(2024, 12, 31), func(date.Date) screener.Bar { return screener.Bar{Open: 10, AdjClose: 10} })
	got := Simulate("X", s, date.New(2024, 1, 20), 100, 100, 7)
	require.NotNil(t, got)
	// buys on Jan 8 and Jan 15 only.
	assert.Equal(t, 300.0, got.MoneySpent)
}

func TestSimulateInvalidSeries(t *testing.T) {
	assert.Nil(t, Simulate("X", new(screener.Series), date.New(2024, 1, 1), 1, 1, 30))
	s := new(screener.Series)
	s.Append(date.New(2024, 1, 1), screener.Bar{Open: 0, AdjClose: 10})
	assert.Nil(t, Simulate("X", s, date.New(2024, 1, 1), 1, 1, 30))
}

func TestBacktestDeterministic(t *testing.T) {
	today := date.New(2024, 12, 31)
	src := &fakeSource{series: map[string]*screener.Series{
		"AAPL": daily(date.New(2020, 1, 1), today, func(day date.Date) screener.Bar {
			x := float64(day.Sub(date.New(2020, 1, 1)))
			return screener.Bar{Open: 100 + 10*math.Sin(x/30), AdjClose: 100 + x/10}
		}),
	}}
	a := newAnalyzer(src, today)
	start := date.MustParseLookback("max")

	r1, err := a.Backtest(context.Background(), "AAPL", start, 1000, 1000, 30)
	require.NoError(t, err)
	r2, err := a.Backtest(context.Background(), "AAPL", start, 1000, 1000, 30)
	require.NoError(t, err)
	require.NotNil(t, r1)
	assert.Equal(t, r1, r2)
	assert.Equal(t, date.New(2020, 1, 1), r1.StartDate)
	assert.Equal(t, 5.0, r1.Years)
}

func TestBacktestUnknownSymbol(t *testing.T) {
	a := newAnalyzer(&fakeSource{}, date.New(2024, 12, 31))
	r, err := a.Backtest(context.Background(), "NOPE", date.Max, 1000, 1000, 30)
	assert.NoError(t, err)
	assert.Nil(t, r)

	_, err = a.Backtest(context.Background(), "NOPE", date.Max, 1000, 1000, 0)
	assert.Error(t, err)
}

func TestGrade(t *testing.T) {
	testCases := []struct {
		name string
		x    float64
		want string
	}{
		{"middle", 0, Ratings[len(Ratings)/2]},
		{"nan is middle", math.NaN(), Ratings[len(Ratings)/2]},
		{"best", 100, "AAA"},
		{"worst", -100, "D"},
		{"positive infinity", math.Inf(1), "AAA"},
		{"negative infinity", math.Inf(-1), "D"},
		{"overflow", -1e6, "D"},
		{"slightly positive", 0.1, "B"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Grade(tc.x))
		})
	}
}
