package renderer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/etnz/screener"
	"github.com/etnz/screener/analytics"
)

// cell escapes the pipes of a table cell.
func cell(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		s = ""
	case float64:
		s = number(x)
	case []byte:
		s = string(x)
	default:
		s = fmt.Sprint(x)
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

func number(f float64) string {
	if math.IsNaN(f) {
		return screener.NA
	}
	return fmt.Sprintf("%.2f", f)
}

func row(b *strings.Builder, cells ...any) {
	b.WriteString("|")
	for _, c := range cells {
		fmt.Fprintf(b, " %s |", cell(c))
	}
	b.WriteString("\n")
}

func header(b *strings.Builder, names []string, aligns string) {
	row(b, toAny(names)...)
	b.WriteString("|")
	for i := range names {
		if i < len(aligns) && aligns[i] == 'r' {
			b.WriteString("---:|")
		} else {
			b.WriteString(":---|")
		}
	}
	b.WriteString("\n")
}

func toAny(s []string) []any {
	res := make([]any, len(s))
	for i, v := range s {
		res[i] = v
	}
	return res
}

// Listings renders the listings as a table.
func Listings(listings []*screener.EquityListing) string {
	var b strings.Builder
	header(&b, []string{"Symbol", "Company"}, "ll")
	for _, l := range listings {
		row(&b, l.Symbol, l.CompanyName)
	}
	return b.String()
}

// Equities renders the equities with one column per change range.
func Equities(equities []*screener.Equity) string {
	var b strings.Builder
	names := append([]string{"Symbol", "Company"}, screener.Ranges...)
	header(&b, append(names, "Last Updated"), "ll"+strings.Repeat("r", len(screener.Ranges)))
	for _, e := range equities {
		cells := []any{e.Symbol, e.CompanyName}
		for _, c := range e.Changes {
			cells = append(cells, c.String())
		}
		updated := ""
		if e.LastUpdated.Valid {
			updated = e.LastUpdated.Time.Format("2006-01-02 15:04")
		}
		row(&b, append(cells, updated)...)
	}
	return b.String()
}

// Options renders the options contracts.
func Options(options []*screener.Option) string {
	var b strings.Builder
	header(&b, []string{"Company", "Type", "Description", "Symbol", "Black-Scholes", "External Model", "Premium", "Rating"}, "llllrrrr")
	for _, o := range options {
		row(&b, o.CompanySymbol, o.Type, o.Description, o.Symbol,
			o.BlackScholesValue, o.ExternalModelValue, o.Premium, o.ContractRating)
	}
	return b.String()
}

// Records renders records of a single kind.
func Records(k screener.Kind, records []screener.Record) string {
	switch k {
	case screener.KindListing:
		return Listings(cast[*screener.EquityListing](records))
	case screener.KindEquity:
		return Equities(cast[*screener.Equity](records))
	default:
		return Options(cast[*screener.Option](records))
	}
}

func cast[T screener.Record](records []screener.Record) []T {
	res := make([]T, 0, len(records))
	for _, r := range records {
		if t, ok := r.(T); ok {
			res = append(res, t)
		}
	}
	return res
}

// Rows renders raw statement rows, columns sorted by name.
func Rows(rows []map[string]any) string {
	if len(rows) == 0 {
		return "No rows.\n"
	}
	set := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			set[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(set))
	for k := range set {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	var b strings.Builder
	header(&b, cols, "")
	for _, r := range rows {
		cells := make([]any, len(cols))
		for i, c := range cols {
			cells[i] = r[c]
		}
		row(&b, cells...)
	}
	return b.String()
}

// percent renders a rate as a percentage with one decimal, or N/A.
func percent(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return screener.NA
	}
	return fmt.Sprintf("%.1f%%", rate*100)
}

// Performance renders an intraday portfolio simulation.
func Performance(p *analytics.Portfolio) string {
	var b strings.Builder
	header(&b, []string{"Ticker", "Start Date", "Stop Date", "Portfolio Value", "Gain", "CAGR"}, "lllrrr")
	for _, h := range p.Holdings {
		row(&b, h.Symbol, h.Start, h.Stop, h.Value, h.Gain().SignedString(), percent(h.CAGR))
	}
	if len(p.Skipped) > 0 {
		fmt.Fprintf(&b, "\nNo intraday data, kept as cash: %s\n", strings.Join(p.Skipped, ", "))
	}
	fmt.Fprintf(&b, "\nCash In Hand: %s\n\nPortfolio CAGR: %s\n", p.Value, percent(p.CAGR))
	return b.String()
}
