package screener

import (
	"fmt"
	"slices"
	"strings"
)

// Kind tags the three kinds of securities persisted by the screener.
type Kind int

const (
	KindListing Kind = iota
	KindEquity
	KindOption
)

// Kinds lists every Kind in schema order.
var Kinds = []Kind{KindListing, KindEquity, KindOption}

// Ranges are the lookback windows tracked by an Equity, in column order.
var Ranges = []string{"1D", "1W", "1M", "3M", "1Y", "5Y", "10Y", "Max"}

var (
	listingColumns = []string{"Symbol", "CompanyName"}
	equityColumns  = slices.Concat([]string{"Symbol", "CompanyName"}, Ranges, []string{"LastUpdated"})
	optionColumns  = []string{"CompanySymbol", "Type", "Description", "Symbol", "BlackScholesValue", "ExternalModelValue", "Premium", "ContractRating", "LastUpdated"}
)

func (k Kind) String() string {
	switch k {
	case KindListing:
		return "listings"
	case KindEquity:
		return "equities"
	case KindOption:
		return "options"
	default:
		panic(fmt.Sprintf("unknown kind %d", k))
	}
}

// ParseKind parses a kind name as printed by String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "listings", "listing", "listedequities":
		return KindListing, nil
	case "equities", "equity":
		return KindEquity, nil
	case "options", "option":
		return KindOption, nil
	default:
		return KindListing, fmt.Errorf("unknown security kind %q", s)
	}
}

// Table returns the name of the table storing records of that kind.
func (k Kind) Table() string {
	switch k {
	case KindListing:
		return "ListedEquities"
	case KindEquity:
		return "Equities"
	case KindOption:
		return "Options"
	default:
		panic(fmt.Sprintf("unknown kind %d", k))
	}
}

// Columns returns the columns of the kind's table in schema order.
func (k Kind) Columns() []string {
	switch k {
	case KindListing:
		return listingColumns
	case KindEquity:
		return equityColumns
	case KindOption:
		return optionColumns
	default:
		panic(fmt.Sprintf("unknown kind %d", k))
	}
}

// HasColumn reports whether name is one of the kind's columns.
func (k Kind) HasColumn(name string) bool { return slices.Contains(k.Columns(), name) }

// New returns an empty record of that kind, ready to be scanned into.
func (k Kind) New() Record {
	switch k {
	case KindListing:
		return new(EquityListing)
	case KindEquity:
		return new(Equity)
	case KindOption:
		return new(Option)
	default:
		panic(fmt.Sprintf("unknown kind %d", k))
	}
}
