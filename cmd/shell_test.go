package cmd

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/etnz/screener"
	"github.com/etnz/screener/store"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepl(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer st.Close()

	in := strings.NewReader(`
sql "INSERT INTO ListedEquities (Symbol, CompanyName) VALUES ('AAPL', 'Apple Inc.')"
sql "INSERT INTO ListedEquities (Symbol, CompanyName) VALUES ('MSFT', 'Microsoft')"
view -listings -where "Symbol = AAPL"
q
sql "INSERT INTO ListedEquities (Symbol, CompanyName) VALUES ('IBM', 'IBM')"
`)
	var out bytes.Buffer
	require.NoError(t, repl(ctx, st, in, &out))

	listings, err := st.Listings(ctx, nil, []store.Order{{Column: "Symbol", Direction: store.Ascending}})
	require.NoError(t, err)
	require.Len(t, listings, 2, "commands after q are not run")
	assert.Equal(t, "AAPL", listings[0].Symbol)
	assert.Equal(t, "MSFT", listings[1].Symbol)
}

func TestViewAllTables(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.AddNewSecurity(ctx, &screener.EquityListing{Symbol: "AAPL", CompanyName: "Apple Inc."}))
	e := &screener.Equity{Symbol: "AAPL", CompanyName: "Apple Inc."}
	require.NoError(t, e.SetChange("1Y", screener.Percent(12)))
	require.NoError(t, st.AddNewSecurity(ctx, e))

	// listings and options have no 1Y column.
	assert.Equal(t, subcommands.ExitSuccess, run(ctx, st, []string{"view", "-all", "-sort", "1Y desc", "-slice", ":1"}))
	assert.Equal(t, subcommands.ExitSuccess, run(ctx, st, []string{"view", "-all", "-where", "1Y > 5"}))
	assert.Equal(t, subcommands.ExitFailure, run(ctx, st, []string{"view", "-listings", "-sort", "1Y desc"}))
}

func TestScope(t *testing.T) {
	conds := []store.Condition{{Column: "Symbol", Op: store.Equal, Value: "AAPL"}}
	orders := []store.Order{{Column: "1Y", Direction: store.Descending}, {Column: "Symbol", Direction: store.Ascending}}

	gotConds, gotOrders, ok := scope(screener.KindListing, conds, orders)
	assert.True(t, ok)
	assert.Equal(t, conds, gotConds)
	assert.Equal(t, []store.Order{{Column: "Symbol", Direction: store.Ascending}}, gotOrders)

	_, gotOrders, ok = scope(screener.KindEquity, conds, orders)
	assert.True(t, ok)
	assert.Equal(t, orders, gotOrders)

	_, _, ok = scope(screener.KindOption, append(conds, store.Condition{Column: "1Y", Op: store.Greater, Value: 5}), nil)
	assert.False(t, ok)
}

func TestCompletion(t *testing.T) {
	fs := flag.NewFlagSet("scr", flag.ContinueOnError)
	fs.String("db", "", "")
	fs.Bool("verbose", false, "")
	c := Completion(fs)

	assert.Contains(t, c.Flags, "db")
	assert.Contains(t, c.Flags, "verbose")
	for _, name := range []string{"init", "update", "sql", "view", "backtest", "perf", "topic", "shell"} {
		assert.Contains(t, c.Sub, name)
	}
	assert.Contains(t, c.Sub["view"].Flags, "where")
	assert.Contains(t, c.Sub["update"].Flags, "single")
	assert.Contains(t, c.Sub["perf"].Flags, "interval")
	assert.Contains(t, c.Sub["topic"].Args.Predict(""), "view")
}
