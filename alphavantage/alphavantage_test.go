package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/etnz/screener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "TIME_SERIES_INTRADAY", r.URL.Query().Get("function"))
		assert.Equal(t, "IBM", r.URL.Query().Get("symbol"))
		assert.Equal(t, "full", r.URL.Query().Get("outputsize"))
		assert.Equal(t, "demo", r.URL.Query().Get("apikey"))
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return &Client{APIKey: "demo", BaseURL: srv.URL, HTTP: srv.Client()}
}

func TestIntraday(t *testing.T) {
	c := newTestClient(t, `{
		"Meta Data": {"1. Information": "Intraday (15min) open, high, low, close prices and volume"},
		"Time Series (15min)": {
			"2025-01-03 09:45:00": {"1. open": "12.5000", "2. high": "13", "3. low": "12", "4. close": "12.7500", "5. volume": "10"},
			"2025-01-02 16:00:00": {"1. open": "11.0000", "2. high": "12", "3. low": "10", "4. close": "11.5000", "5. volume": "10"},
			"2025-01-03 09:30:00": {"1. open": "12.0000", "2. high": "13", "3. low": "12", "4. close": "12.5000", "5. volume": "10"}
		}
	}`)
	candles, err := c.Intraday(context.Background(), "ibm", "15min")
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, screener.Candle{Time: time.Date(2025, 1, 2, 16, 0, 0, 0, time.UTC), Open: 11, Close: 11.5}, candles[0])
	assert.Equal(t, time.Date(2025, 1, 3, 9, 30, 0, 0, time.UTC), candles[1].Time)
	assert.Equal(t, 12.75, candles[2].Close)
}

func TestIntradayErrors(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want error
	}{
		{"unknown symbol", `{"Error Message": "Invalid API call."}`, screener.ErrSymbolNotFound},
		{"empty series", `{"Meta Data": {}, "Time Series (15min)": {}}`, screener.ErrNoData},
		{"missing series", `{"Meta Data": {}}`, screener.ErrNoData},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestClient(t, tc.body).Intraday(context.Background(), "IBM", "15min")
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := newTestClient(t, `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`).Intraday(context.Background(), "IBM", "15min")
	require.Error(t, err)
	assert.NotErrorIs(t, err, screener.ErrSymbolNotFound)
	assert.NotErrorIs(t, err, screener.ErrNoData)
	assert.Contains(t, err.Error(), "rate limit")
}
