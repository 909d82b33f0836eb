// Package alphavantage fetches intraday price series from the Alpha Vantage API.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/etnz/screener"
)

// DefaultBaseURL is the address of the Alpha Vantage API.
const DefaultBaseURL = "https://www.alphavantage.co"

// Intervals are the supported candle durations.
var Intervals = []string{"1min", "5min", "15min", "30min", "60min"}

// timeLayout is the layout of the time series keys.
const timeLayout = "2006-01-02 15:04:05"

// Client fetches intraday candles.
type Client struct {
	APIKey  string
	BaseURL string // DefaultBaseURL if empty
	HTTP    *http.Client
}

// New returns a client for the given API key.
//
// Responses are not cached: intraday series change during the day, and rate
// limit notices are sent with a 200 status.
func New(apiKey string) *Client { return &Client{APIKey: apiKey, HTTP: http.DefaultClient} }

// Intraday returns the full intraday series of symbol, oldest first.
//
// It fails with screener.ErrSymbolNotFound when Alpha Vantage rejects the
// symbol, and with screener.ErrNoData when the series is empty. A rate limit
// notice is returned as a plain error.
func (c *Client) Intraday(ctx context.Context, symbol, interval string) ([]screener.Candle, error) {
	// https://www.alphavantage.co/query?function=TIME_SERIES_INTRADAY&symbol=IBM&interval=15min&outputsize=full&apikey=demo
	// {
	//	"Meta Data": {...},
	//	"Time Series (15min)": {
	//		"2025-01-03 19:45:00": {
	//			"1. open": "222.6500",
	//			"2. high": "222.7000",
	//			"3. low": "222.6000",
	//			"4. close": "222.6700",
	//			"5. volume": "1027"
	//		},
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	q := url.Values{}
	q.Set("function", "TIME_SERIES_INTRADAY")
	q.Set("symbol", strings.ToUpper(symbol))
	q.Set("interval", interval)
	q.Set("outputsize", "full")
	q.Set("apikey", c.APIKey)
	addr := strings.TrimSuffix(base, "/") + "/query?" + q.Encode()

	content := make(map[string]json.RawMessage)
	if err := screener.GetJSON(ctx, client, addr, &content); err != nil {
		return nil, fmt.Errorf("alphavantage %s: %w", symbol, err)
	}
	if msg, ok := message(content, "Error Message"); ok {
		return nil, fmt.Errorf("alphavantage %s: %s: %w", symbol, msg, screener.ErrSymbolNotFound)
	}
	for _, k := range []string{"Note", "Information"} {
		if msg, ok := message(content, k); ok {
			return nil, fmt.Errorf("alphavantage %s: %s", symbol, msg)
		}
	}

	type Info struct {
		Open  float64 `json:"1. open,string"`
		Close float64 `json:"4. close,string"`
	}
	series := make(map[string]Info)
	if raw, ok := content["Time Series ("+interval+")"]; ok {
		if err := json.Unmarshal(raw, &series); err != nil {
			return nil, fmt.Errorf("alphavantage %s: invalid time series: %w", symbol, err)
		}
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("alphavantage %s %s: %w", symbol, interval, screener.ErrNoData)
	}
	candles := make([]screener.Candle, 0, len(series))
	for k, info := range series {
		t, err := time.Parse(timeLayout, k)
		if err != nil {
			return nil, fmt.Errorf("alphavantage %s: invalid time %q: %w", symbol, k, err)
		}
		candles = append(candles, screener.Candle{Time: t, Open: info.Open, Close: info.Close})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	return candles, nil
}

// message returns the string value of key in content, if any.
func message(content map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := content[key]
	if !ok {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		return string(raw), true
	}
	return msg, true
}
