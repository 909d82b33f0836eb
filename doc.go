// Package screener holds the domain records of the screener toolkit: the
// listed equities scraped from market-data providers, the equities with their
// percent-change snapshots, and the valuable option contracts found in options
// chains.
//
// Records are plain typed structs. Each one reports its Kind, which names the
// table it lives in and its column set, so that the store package can map
// records to rows without inspecting runtime types:
//   - EquityListing: a raw ticker before any performance data exists.
//   - Equity: percent change over the standard lookback windows.
//   - Option: an options contract whose model value exceeds the market ask.
//
// Records can be built positionally (Kind.New then Dest, used when scanning
// rows in schema order) or from a keyword map (NewEquityListing, NewEquity,
// NewOption) which rejects unknown keys.
//
// This package serves as the foundational model for the `scr` command-line
// tool.
package screener
