package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/screener"
	"github.com/etnz/screener/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{APIKey: "demo", BaseURL: srv.URL, HTTP: srv.Client()}
}

func TestPrices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/eod/MCD.US", r.URL.Path)
		assert.Equal(t, "2025-01-02", r.URL.Query().Get("from"))
		assert.Equal(t, "2025-01-03", r.URL.Query().Get("to"))
		assert.Equal(t, "demo", r.URL.Query().Get("api_token"))
		w.Write([]byte(`[
			{"date":"2025-01-03","open":12,"high":13,"low":11,"close":12.5,"adjusted_close":12.4,"volume":10},
			{"date":"2025-01-02","open":10,"high":11,"low":9,"close":10.5,"adjusted_close":10.4,"volume":10}
		]`))
	})
	s, err := c.Prices(context.Background(), "mcd", date.NewRange(date.New(2025, 1, 2), date.New(2025, 1, 3)))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	day, bar := s.First()
	assert.Equal(t, date.New(2025, 1, 2), day)
	assert.Equal(t, screener.Bar{Open: 10, AdjClose: 10.4}, bar)
	_, bar = s.Latest()
	assert.Equal(t, 12.4, bar.AdjClose)
}

func TestPricesErrors(t *testing.T) {
	rng := date.NewRange(date.New(2025, 1, 2), date.New(2025, 1, 3))
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{"unknown symbol", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }, screener.ErrSymbolNotFound},
		{"no data", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`[]`)) }, screener.ErrNoData},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestClient(t, tc.handler).Prices(context.Background(), "ZZZ", rng)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	})
	_, err := c.Prices(context.Background(), "MCD", rng)
	require.Error(t, err)
	assert.NotErrorIs(t, err, screener.ErrSymbolNotFound)
	assert.NotErrorIs(t, err, screener.ErrNoData)
}
