// Package tdameritrade fetches options chains from the TD Ameritrade market data API.
package tdameritrade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/etnz/screener"
	"github.com/etnz/screener/date"
	"github.com/etnz/screener/valuation"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the address of the TD Ameritrade API.
const DefaultBaseURL = "https://api.tdameritrade.com"

// Client fetches options chains.
type Client struct {
	APIKey  string
	BaseURL string // DefaultBaseURL if empty
	HTTP    *http.Client
	Today   func() date.Date // date.Today if nil
}

// New returns a client for the given API key.
func New(apiKey string) *Client { return &Client{APIKey: apiKey, HTTP: http.DefaultClient} }

// number is a JSON number that may also be sent as a string, like "NaN".
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = number(math.NaN())
		return nil
	}
	s := strings.Trim(string(data), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*n = number(f)
	return nil
}

type contract struct {
	PutCall                string `json:"putCall"`
	Symbol                 string `json:"symbol"`
	Description            string `json:"description"`
	Ask                    number `json:"ask"`
	TheoreticalOptionValue number `json:"theoreticalOptionValue"`
	DaysToExpiration       number `json:"daysToExpiration"`
	StrikePrice            number `json:"strikePrice"`
}

// expDateMap maps expiration ("2025-01-17:5") then strike ("150.0") to contracts.
type expDateMap map[string]map[string][]contract

type chain struct {
	Symbol          string     `json:"symbol"`
	Status          string     `json:"status"`
	UnderlyingPrice number     `json:"underlyingPrice"`
	InterestRate    number     `json:"interestRate"`
	Volatility      number     `json:"volatility"`
	CallExpDateMap  expDateMap `json:"callExpDateMap"`
	PutExpDateMap   expDateMap `json:"putExpDateMap"`
}

// Chains returns the calls then the puts of symbol expiring up to the given day.
// A zero day means no limit.
//
// A provider error answer is not an error: it returns no quotes.
func (c *Client) Chains(ctx context.Context, symbol string, to date.Date) ([]valuation.Quote, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	today := date.Today
	if c.Today != nil {
		today = c.Today
	}
	q := url.Values{}
	q.Set("apikey", c.APIKey)
	q.Set("symbol", strings.ToUpper(symbol))
	q.Set("contractType", "ALL")
	q.Set("strikeCount", "50")
	q.Set("includeQuotes", "TRUE")
	q.Set("strategy", "SINGLE")
	q.Set("fromDate", today().String())
	if !to.IsZero() {
		q.Set("toDate", to.String())
	}
	addr := strings.TrimSuffix(base, "/") + "/v1/marketdata/chains?" + q.Encode()

	var ch chain
	if err := screener.GetJSON(ctx, client, addr, &ch); err != nil {
		var status *screener.StatusError
		if errors.As(err, &status) {
			log.Warn().Err(err).Str("symbol", symbol).Msg("no options chain")
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get %s options chain: %w", symbol, err)
	}
	quotes := ch.flatten(ch.CallExpDateMap)
	return append(quotes, ch.flatten(ch.PutExpDateMap)...), nil
}

// flatten returns the first contract of every expiration and strike, in
// expiration then strike order, with the chain values copied in.
func (ch *chain) flatten(m expDateMap) []valuation.Quote {
	var quotes []valuation.Quote
	for _, exp := range sortedKeys(m, func(a, b string) bool { return a < b }) {
		strikes := m[exp]
		for _, strike := range sortedKeys(strikes, func(a, b string) bool { return parse(a) < parse(b) }) {
			contracts := strikes[strike]
			if len(contracts) == 0 {
				continue
			}
			k := contracts[0]
			quotes = append(quotes, valuation.Quote{
				CompanySymbol:    ch.Symbol,
				PutCall:          k.PutCall,
				Description:      k.Description,
				Symbol:           k.Symbol,
				DaysToExpiration: float64(k.DaysToExpiration),
				UnderlyingPrice:  float64(ch.UnderlyingPrice),
				StrikePrice:      float64(k.StrikePrice),
				InterestRate:     float64(ch.InterestRate),
				Volatility:       float64(ch.Volatility),
				TheoreticalValue: float64(k.TheoreticalOptionValue),
				Ask:              float64(k.Ask),
			})
		}
	}
	return quotes
}

func sortedKeys[V any](m map[string]V, less func(a, b string) bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
	return keys
}

func parse(strike string) float64 {
	f, _ := strconv.ParseFloat(strike, 64)
	return f
}

var _ json.Unmarshaler = (*number)(nil)
