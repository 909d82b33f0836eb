package screener

import (
	"time"

	"github.com/etnz/screener/date"
)

// Bar is one trading day of a price series.
type Bar struct {
	Open     float64
	AdjClose float64
}

// Series is a chronological price series.
type Series = date.History[Bar]

// Candle is one interval of an intraday price series.
type Candle struct {
	Time  time.Time
	Open  float64
	Close float64
}
