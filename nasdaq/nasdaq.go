// Package nasdaq scrapes the listed stocks and ETFs from the NASDAQ screener API.
package nasdaq

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/screener"
	"github.com/rs/zerolog/log"
)

const (
	DefaultStocksURL = "https://www.nasdaq.com"
	DefaultETFsURL   = "https://api.nasdaq.com"

	stocksPageSize = 200
	etfsPageSize   = 50
)

// browser is sent as the user agent, NASDAQ rejects scripted clients.
const browser = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_4) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/81.0.4044.138 Safari/537.36"

// Client lists the securities traded on US exchanges.
type Client struct {
	StocksURL string // DefaultStocksURL if empty
	ETFsURL   string // DefaultETFsURL if empty
	HTTP      *http.Client
}

// New returns a client using a daily disk cache in cacheDir.
func New(cacheDir string) *Client {
	return &Client{HTTP: screener.DailyClient(cacheDir)}
}

type userAgent struct{ base http.RoundTripper }

func (u userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", browser)
	return u.base.RoundTrip(req)
}

func (c *Client) client() *http.Client {
	base := c.HTTP
	if base == nil {
		base = http.DefaultClient
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client := *base
	client.Transport = userAgent{transport}
	return &client
}

func orDefault(addr, def string) string {
	if addr == "" {
		addr = def
	}
	return strings.TrimSuffix(addr, "/")
}

// Listings returns all the listed stocks followed by all the listed ETFs.
func (c *Client) Listings(ctx context.Context) ([]screener.EquityListing, error) {
	stocks, err := c.Stocks(ctx)
	if err != nil {
		return nil, err
	}
	etfs, err := c.ETFs(ctx)
	if err != nil {
		return nil, err
	}
	return append(stocks, etfs...), nil
}

// Stocks returns every listed stock.
func (c *Client) Stocks(ctx context.Context) ([]screener.EquityListing, error) {
	// {"count": 7123, "data": [{"ticker": "AAPL", "company": "Apple Inc."}, ...]}
	type page struct {
		Count int `json:"count"`
		Data  []struct {
			Ticker  string `json:"ticker"`
			Company string `json:"company"`
		} `json:"data"`
	}
	client := c.client()
	base := orDefault(c.StocksURL, DefaultStocksURL)
	addr := func(p, size int) string { return fmt.Sprintf("%s/api/v1/screener?page=%d&pageSize=%d", base, p, size) }

	var first page
	if err := screener.GetJSON(ctx, client, addr(1, 1), &first); err != nil {
		return nil, fmt.Errorf("cannot count nasdaq stocks: %w", err)
	}
	pages := pageCount(first.Count, stocksPageSize)
	var listings []screener.EquityListing
	for p := 1; p <= pages; p++ {
		var current page
		if err := screener.GetJSON(ctx, client, addr(p, stocksPageSize), &current); err != nil {
			return nil, fmt.Errorf("cannot get nasdaq stocks page %d: %w", p, err)
		}
		for _, s := range current.Data {
			listings = append(listings, screener.EquityListing{Symbol: s.Ticker, CompanyName: s.Company})
		}
		log.Debug().Int("page", p).Int("pages", pages).Msg("nasdaq stocks")
	}
	return listings, nil
}

// ETFs returns every listed ETF.
func (c *Client) ETFs(ctx context.Context) ([]screener.EquityListing, error) {
	// {"data": {"records": {"totalrecords": 2345, "data": {"rows": [{"symbol": "SPY", "companyName": "SPDR ..."}]}}}}
	client := c.client()
	base := orDefault(c.ETFsURL, DefaultETFsURL)
	addr := func(offset int) string { return fmt.Sprintf("%s/api/screener/etf?offset=%d", base, offset) }

	var first any
	if err := screener.GetJSON(ctx, client, addr(0), &first); err != nil {
		return nil, fmt.Errorf("cannot count nasdaq etfs: %w", err)
	}
	total, err := get[float64](first, "$.data.records.totalrecords")
	if err != nil {
		return nil, err
	}
	pages := pageCount(int(total), etfsPageSize)
	var listings []screener.EquityListing
	for p := 0; p < pages; p++ {
		current := first
		if p > 0 {
			if err := screener.GetJSON(ctx, client, addr(p*etfsPageSize), &current); err != nil {
				return nil, fmt.Errorf("cannot get nasdaq etfs page %d: %w", p, err)
			}
		}
		rows, err := jsonpath.Get("$.data.records.data.rows[*]", current)
		if err != nil {
			return nil, fmt.Errorf("cannot parse nasdaq etfs page %d: %w", p, err)
		}
		list, _ := rows.([]any)
		for _, row := range list {
			symbol, err := get[string](row, "$.symbol")
			if err != nil {
				return nil, err
			}
			company, err := get[string](row, "$.companyName")
			if err != nil || company == "" {
				company = screener.NA
			}
			listings = append(listings, screener.EquityListing{Symbol: symbol, CompanyName: company})
		}
		log.Debug().Int("page", p+1).Int("pages", pages).Msg("nasdaq etfs")
	}
	return listings, nil
}

// get evaluates path in jobj and returns its single value as a T.
func get[T any](jobj any, path string) (T, error) {
	var zero T
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return zero, fmt.Errorf("error parsing %q: %w", path, err)
	}
	// jsonpath may return a list of 1 answer, or the answer itself:
	// keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(T)
	if !ok {
		return zero, fmt.Errorf("error parsing %q: unexpected %T %v", path, jval, jval)
	}
	return val, nil
}

// pageCount returns the number of pages of size needed to hold count items.
func pageCount(count, size int) int { return (count + size - 1) / size }
