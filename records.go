package screener

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/screener/date"
	"github.com/guregu/null/v6"
)

// Record is implemented by the three security records.
type Record interface {
	// Kind returns the record's security kind.
	Kind() Kind
	// Dest returns pointers to the record's fields in column order, to scan a row into.
	Dest() []any
	// Fields returns the client-writable column/value pairs in column order.
	Fields() []Field
}

// Field is a column name and the value bound to it.
type Field struct {
	Name  string
	Value any
}

// EquityListing is a raw scraped ticker.
type EquityListing struct {
	Symbol      string
	CompanyName string
}

func (l *EquityListing) Kind() Kind  { return KindListing }
func (l *EquityListing) Dest() []any { return []any{&l.Symbol, &l.CompanyName} }
func (l *EquityListing) Fields() []Field {
	return []Field{{"Symbol", l.Symbol}, {"CompanyName", l.CompanyName}}
}

// Equity holds the percent change of a symbol over each of the Ranges.
type Equity struct {
	Symbol      string
	CompanyName string
	Changes     [8]Change // indexed like Ranges
	LastUpdated null.Time
}

func (e *Equity) Kind() Kind { return KindEquity }

func (e *Equity) Dest() []any {
	dest := []any{&e.Symbol, &e.CompanyName}
	for i := range e.Changes {
		dest = append(dest, &e.Changes[i])
	}
	return append(dest, &e.LastUpdated)
}

func (e *Equity) Fields() []Field {
	fields := []Field{{"Symbol", e.Symbol}, {"CompanyName", e.CompanyName}}
	for i, r := range Ranges {
		fields = append(fields, Field{r, e.Changes[i]})
	}
	return fields
}

// Change returns the percent change over the given range ("1D" ... "Max").
func (e *Equity) Change(rng string) Change {
	if i := rangeIndex(rng); i >= 0 {
		return e.Changes[i]
	}
	return NotAvailable()
}

// SetChange sets the percent change over the given range.
func (e *Equity) SetChange(rng string, c Change) error {
	i := rangeIndex(rng)
	if i < 0 {
		return fmt.Errorf("%w %q", ErrUnknownField, rng)
	}
	e.Changes[i] = c
	return nil
}

// rangeIndex returns the position of rng in Ranges, ignoring case, or -1.
func rangeIndex(rng string) int {
	for i, r := range Ranges {
		if strings.EqualFold(r, rng) {
			return i
		}
	}
	return -1
}

// Option is a valuable options contract.
type Option struct {
	CompanySymbol      string
	Type               string // CALL or PUT
	Description        string
	Symbol             string
	BlackScholesValue  float64
	ExternalModelValue float64 // NaN when the provider has no model value
	Premium            float64 // ask
	ContractRating     float64
	LastUpdated        null.Time
}

func (o *Option) Kind() Kind { return KindOption }

func (o *Option) Dest() []any {
	return []any{&o.CompanySymbol, &o.Type, &o.Description, &o.Symbol,
		(*nanFloat)(&o.BlackScholesValue), (*nanFloat)(&o.ExternalModelValue),
		(*nanFloat)(&o.Premium), (*nanFloat)(&o.ContractRating), &o.LastUpdated}
}

func (o *Option) Fields() []Field {
	return []Field{
		{"CompanySymbol", o.CompanySymbol},
		{"Type", o.Type},
		{"Description", o.Description},
		{"Symbol", o.Symbol},
		{"BlackScholesValue", nanFloat(o.BlackScholesValue)},
		{"ExternalModelValue", nanFloat(o.ExternalModelValue)},
		{"Premium", nanFloat(o.Premium)},
		{"ContractRating", nanFloat(o.ContractRating)},
	}
}

// expirationRegex matches descriptions like "AAPL Jan 17 2025 150 Call".
var expirationRegex = regexp.MustCompile(`.+?\s(\w{3})\s(\d+)\s(\d+)`)

// Expiration returns the expiration day embedded in the contract description.
func (o *Option) Expiration() (date.Date, error) {
	m := expirationRegex.FindStringSubmatch(o.Description)
	if m == nil {
		return date.Date{}, fmt.Errorf("no expiration in option description %q", o.Description)
	}
	t, err := time.Parse("Jan 2 2006", fmt.Sprintf("%s %s %s", m[1], m[2], m[3]))
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid expiration in option description %q: %w", o.Description, err)
	}
	return date.Of(t), nil
}

// nanFloat is a float64 column where NULL stands for NaN.
type nanFloat float64

func (f *nanFloat) Scan(value any) error {
	var n null.Float
	if err := n.Scan(value); err != nil {
		return err
	}
	*f = nanFloat(n.ValueOrZero())
	if !n.Valid {
		*f = nanFloat(math.NaN())
	}
	return nil
}

func (f nanFloat) Value() (driver.Value, error) {
	if math.IsNaN(float64(f)) {
		return nil, nil
	}
	return float64(f), nil
}

// NewEquityListing builds a listing from a keyword map.
func NewEquityListing(fields map[string]any) (*EquityListing, error) {
	l := new(EquityListing)
	err := assign(fields, map[string]func(any) error{
		"Symbol":      setString(&l.Symbol),
		"CompanyName": setString(&l.CompanyName),
	})
	return l, err
}

// NewEquity builds an equity from a keyword map. Missing changes are N/A.
func NewEquity(fields map[string]any) (*Equity, error) {
	e := new(Equity)
	setters := map[string]func(any) error{
		"Symbol":      setString(&e.Symbol),
		"CompanyName": setString(&e.CompanyName),
	}
	for i, r := range Ranges {
		setters[r] = setChange(&e.Changes[i])
	}
	err := assign(fields, setters)
	return e, err
}

// NewOption builds an option from a keyword map.
func NewOption(fields map[string]any) (*Option, error) {
	o := &Option{ExternalModelValue: math.NaN()}
	err := assign(fields, map[string]func(any) error{
		"CompanySymbol":      setString(&o.CompanySymbol),
		"Type":               setString(&o.Type),
		"Description":        setString(&o.Description),
		"Symbol":             setString(&o.Symbol),
		"BlackScholesValue":  setFloat(&o.BlackScholesValue),
		"ExternalModelValue": setFloat(&o.ExternalModelValue),
		"Premium":            setFloat(&o.Premium),
		"ContractRating":     setFloat(&o.ContractRating),
	})
	return o, err
}

// assign applies each keyword value with its setter. Keys are visited in
// sorted order so that errors are reproducible.
func assign(fields map[string]any, setters map[string]func(any) error) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		set, ok := setters[k]
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownField, k)
		}
		if err := set(fields[k]); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	return nil
}

func setString(p *string) func(any) error {
	return func(v any) error {
		switch x := v.(type) {
		case nil:
			*p = ""
		case string:
			*p = x
		case fmt.Stringer:
			*p = x.String()
		default:
			return fmt.Errorf("%w: %T is not a string", ErrFieldType, v)
		}
		return nil
	}
}

func setFloat(p *float64) func(any) error {
	return func(v any) (err error) {
		*p, err = toFloat(v)
		return err
	}
}

func setChange(p *Change) func(any) error {
	return func(v any) (err error) {
		*p, err = toChange(v)
		return err
	}
}

// toFloat converts numbers and numeric strings to float64.
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrFieldType, x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %T is not a number", ErrFieldType, v)
	}
}

var (
	_ Record = (*EquityListing)(nil)
	_ Record = (*Equity)(nil)
	_ Record = (*Option)(nil)
)
