package store

import (
	"testing"

	"github.com/etnz/screener"
	"github.com/etnz/screener/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhere(t *testing.T) {
	testCases := []struct {
		name  string
		conds []Condition
		sql   string
		args  []any
	}{
		{"none", nil, "", nil},
		{"and only", []Condition{{"1D", Greater, 5}, {"Symbol", Like, "A%"}}, ` WHERE ("1D" > ? AND Symbol LIKE ?)`, []any{5, "A%"}},
		{"between", []Condition{{"Max", Between, []float64{1, 2}}}, ` WHERE (Max BETWEEN ? AND ?)`, []any{1.0, 2.0}},
		{"between array", []Condition{{"Max", Between, [2]int{1, 2}}}, ` WHERE (Max BETWEEN ? AND ?)`, []any{1, 2}},
		{"in", []Condition{{"Symbol", In, []string{"A", "B"}}}, ` WHERE (Symbol IN (?, ?))`, []any{"A", "B"}},
		{"in scalar", []Condition{{"Symbol", In, "A"}}, ` WHERE (Symbol IN (?))`, []any{"A"}},
		{"is null", []Condition{{"1W", Equal, screener.NA}}, ` WHERE ("1W" IS NULL)`, nil},
		{"is not null", []Condition{{"10Y", NotEqual, nil}}, ` WHERE ("10Y" IS NOT NULL)`, nil},
		{"not available change", []Condition{{"1Y", Equal, screener.NotAvailable()}}, ` WHERE ("1Y" IS NULL)`, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, args, err := where(screener.KindEquity, tc.conds)
			require.NoError(t, err)
			assert.Equal(t, tc.sql, sql)
			assert.Equal(t, tc.args, args)
		})
	}
}

func TestWhereMalformed(t *testing.T) {
	testCases := []struct {
		name string
		cond Condition
		want error
	}{
		{"between single value", Condition{"Max", Between, 1}, ErrMalformedCondition},
		{"between one bound", Condition{"Max", Between, []int{1}}, ErrMalformedCondition},
		{"between three bounds", Condition{"Max", Between, []int{1, 2, 3}}, ErrMalformedCondition},
		{"empty in", Condition{"Symbol", In, []string{}}, ErrMalformedCondition},
		{"list with scalar operator", Condition{"Symbol", Equal, []string{"A"}}, ErrMalformedCondition},
		{"unknown operator", Condition{"Symbol", Operator("~"), "A"}, ErrMalformedCondition},
		{"unknown column", Condition{"Sector", Equal, "Tech"}, ErrUnknownColumn},
		{"injected column", Condition{"Symbol; DROP TABLE Equities", Equal, "A"}, ErrUnknownColumn},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := where(screener.KindEquity, []Condition{tc.cond})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOrderBy(t *testing.T) {
	got, err := orderBy(screener.KindEquity, []Order{{"1Y", Descending}, {"Symbol", Ascending}})
	require.NoError(t, err)
	assert.Equal(t, ` ORDER BY "1Y" DESC, Symbol ASC`, got)

	_, err = orderBy(screener.KindListing, []Order{{"1Y", Descending}})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestLiteral(t *testing.T) {
	testCases := []struct {
		in   any
		want string
	}{
		{"O'Neil", `"O''Neil"`},
		{12.5, "12.5"},
		{42, "42"},
		{nil, "NULL"},
		{screener.NotAvailable(), "NULL"},
		{screener.Percent(3.25), "3.25"},
		{date.New(2025, 1, 2), `"2025-01-02"`},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Literal(tc.in))
	}
	assert.Equal(t, `SELECT * FROM Equities WHERE ("1D" > 5 AND Symbol = "O''Neil")`,
		render(`SELECT * FROM Equities WHERE ("1D" > ? AND Symbol = ?)`, []any{5, "O'Neil"}))
}

func TestParseOperator(t *testing.T) {
	for _, op := range Operators {
		got, err := ParseOperator(string(op))
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	got, err := ParseOperator("between")
	require.NoError(t, err)
	assert.Equal(t, Between, got)
	got, err = ParseOperator("!=")
	require.NoError(t, err)
	assert.Equal(t, NotEqual, got)
	_, err = ParseOperator("=~")
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"asc", "A", "ascending"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, Ascending, d)
	}
	for _, s := range []string{"desc", "d", "Descending"} {
		d, err := ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, Descending, d)
	}
	_, err := ParseDirection("up")
	assert.Error(t, err)
}
