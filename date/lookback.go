package date

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidLookback is returned when a lookback token cannot be parsed.
var ErrInvalidLookback = errors.New("invalid lookback")

// Epoch is the start date used for the "max" lookback.
var Epoch = New(1900, time.January, 1)

// Lookback is a compact duration such as "3m" or "max" counted back from a reference day.
type Lookback struct {
	N      int
	Unit   Period
	IsMax  bool
	source string
}

// Max is the lookback covering the whole available history.
var Max = Lookback{IsMax: true, source: "max"}

// ParseLookback parses tokens like "1d", "2w", "3m", "10y" or "max" (case insensitive).
func ParseLookback(token string) (Lookback, error) {
	s := strings.ToLower(strings.TrimSpace(token))
	if s == "max" {
		return Max, nil
	}
	if len(s) < 2 {
		return Lookback{}, fmt.Errorf("%w %q", ErrInvalidLookback, token)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return Lookback{}, fmt.Errorf("%w %q: want <integer><d|w|m|y> or max", ErrInvalidLookback, token)
	}
	unit, err := ParsePeriod(s[len(s)-1:])
	if err != nil {
		return Lookback{}, fmt.Errorf("%w %q: %v", ErrInvalidLookback, token, err)
	}
	return Lookback{N: n, Unit: unit, source: s}, nil
}

// MustParseLookback is like ParseLookback but panics on error.
func MustParseLookback(token string) Lookback {
	l, err := ParseLookback(token)
	if err != nil {
		panic(err.Error())
	}
	return l
}

// Start returns the first day of the window ending on today.
func (l Lookback) Start(today Date) Date {
	if l.IsMax {
		return Epoch
	}
	return l.Unit.Back(today, l.N)
}

// Range returns the window [Start(today), today].
func (l Lookback) Range(today Date) Range { return NewRange(l.Start(today), today) }

// String returns the token form of the lookback.
func (l Lookback) String() string {
	if l.IsMax {
		return "max"
	}
	if l.source != "" {
		return l.source
	}
	return fmt.Sprintf("%d%s", l.N, l.Unit.Unit())
}

// Ahead returns the day l after today, used as an expiry horizon.
// The max lookback has no horizon and returns the zero Date.
func (l Lookback) Ahead(today Date) Date {
	if l.IsMax {
		return Date{}
	}
	return l.Unit.Back(today, -l.N)
}
