package date

import (
	"fmt"
	"strings"
)

// Period is a calendar unit used to express lookback windows.
type Period int

func (p Period) String() string {
	switch p {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

const (
	Daily Period = iota
	Weekly
	Monthly
	Yearly
)

// Unit returns the single letter used for p in lookback tokens.
func (p Period) Unit() string { return p.String()[:1] }

// Back returns on moved n periods into the past.
func (p Period) Back(on Date, n int) Date {
	switch p {
	case Weekly:
		return on.Add(-7 * n)
	case Monthly:
		return on.AddMonths(-n)
	case Yearly:
		return on.AddYears(-n)
	default:
		return on.Add(-n)
	}
}

// ParsePeriod parses a period name ("monthly", "month") or unit letter ("m").
func ParsePeriod(p string) (Period, error) {
	p = strings.ToLower(p)
	switch p {
	case "daily", "day", "d":
		return Daily, nil
	case "weekly", "week", "w":
		return Weekly, nil
	case "monthly", "month", "m":
		return Monthly, nil
	case "yearly", "year", "y":
		return Yearly, nil
	default:
		return Daily, fmt.Errorf("unknown period %s", p)
	}
}
