// Package eodhd fetches end-of-day price series from the EOD Historical Data API.
package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/screener"
	"github.com/etnz/screener/date"
)

// DefaultBaseURL is the address of the EODHD API.
const DefaultBaseURL = "https://eodhd.com"

// Client fetches price series for US listed symbols.
type Client struct {
	APIKey  string
	BaseURL string       // DefaultBaseURL if empty
	HTTP    *http.Client // a daily caching client if nil
}

// New returns a client using a daily disk cache in cacheDir.
func New(apiKey, cacheDir string) *Client {
	return &Client{APIKey: apiKey, HTTP: screener.DailyClient(cacheDir)}
}

// ticker returns the EODHD ticker of a US symbol.
func ticker(symbol string) string { return strings.ToUpper(symbol) + ".US" }

// Prices returns the daily open and adjusted close of symbol within r.
//
// It fails with screener.ErrSymbolNotFound when EODHD does not know the
// symbol, and with screener.ErrNoData when there is no trading day in r.
func (c *Client) Prices(ctx context.Context, symbol string, r date.Range) (*screener.Series, error) {
	// https://eodhd.com/api/eod/MCD.US?api_token=demo&fmt=json&from=2017-01-05&to=2017-02-10
	// [
	//	{
	//		"date": "2017-01-05",
	//		"open": 121.33,
	//		"high": 122.01,
	//		"low": 120.87,
	//		"close": 121.66,
	//		"adjusted_close": 103.91,
	//		"volume": 3176200
	//	},
	// bounds are included in the response.
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	client := c.HTTP
	if client == nil {
		client = screener.DailyClient("")
	}
	addr := fmt.Sprintf("%s/api/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		strings.TrimSuffix(base, "/"), url.PathEscape(ticker(symbol)), url.QueryEscape(c.APIKey), r.From, r.To)

	type Info struct {
		Date          date.Date `json:"date"`
		Open          float64   `json:"open"`
		AdjustedClose float64   `json:"adjusted_close"`
	}
	content := make([]Info, 0)
	if err := screener.GetJSON(ctx, client, addr, &content); err != nil {
		var status *screener.StatusError
		if errors.As(err, &status) && status.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("eodhd %s: %w", symbol, screener.ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("eodhd %s: %w", symbol, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("eodhd %s from %s to %s: %w", symbol, r.From, r.To, screener.ErrNoData)
	}
	series := new(screener.Series)
	for _, info := range content {
		series.Append(info.Date, screener.Bar{Open: info.Open, AdjClose: info.AdjustedClose})
	}
	return series, nil
}
