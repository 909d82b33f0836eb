package screener

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
)

// NA is the text used for a percent change that could not be computed.
const NA = "N/A"

// Change is a percent change, or N/A when it could not be computed.
//
// N/A is stored as NULL. Rows written by older versions that hold the text
// 'N/A' read back as N/A too.
type Change struct{ null.Float }

// Percent returns a known percent change.
func Percent(v float64) Change { return Change{null.FloatFrom(v)} }

// NotAvailable returns the N/A change.
func NotAvailable() Change { return Change{} }

// IsNA reports whether c is N/A.
func (c Change) IsNA() bool { return !c.Valid }

// String returns the percent with two decimals, or N/A.
func (c Change) String() string {
	if c.IsNA() {
		return NA
	}
	return fmt.Sprintf("%.2f", c.Float64)
}

// Scan implements sql.Scanner.
func (c *Change) Scan(value any) error {
	switch v := value.(type) {
	case string:
		if v == NA {
			*c = NotAvailable()
			return nil
		}
	case []byte:
		if string(v) == NA {
			*c = NotAvailable()
			return nil
		}
	}
	return c.Float.Scan(value)
}

// Value implements driver.Valuer. N/A is NULL.
func (c Change) Value() (driver.Value, error) {
	if c.IsNA() {
		return nil, nil
	}
	return c.Float64, nil
}

// MarshalJSON encodes N/A as the "N/A" string.
func (c Change) MarshalJSON() ([]byte, error) {
	if c.IsNA() {
		return json.Marshal(NA)
	}
	return json.Marshal(c.Float64)
}

// UnmarshalJSON accepts numbers, numeric strings, null and "N/A".
func (c *Change) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	x, err := toChange(v)
	if err != nil {
		return err
	}
	*c = x
	return nil
}

// toChange converts a keyword value into a Change.
func toChange(v any) (Change, error) {
	switch x := v.(type) {
	case nil:
		return NotAvailable(), nil
	case Change:
		return x, nil
	case null.Float:
		return Change{x}, nil
	case string:
		s := strings.TrimSpace(x)
		if s == NA || s == "" {
			return NotAvailable(), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Change{}, fmt.Errorf("%w: %q is not a percent change", ErrFieldType, x)
		}
		return Percent(f), nil
	}
	f, err := toFloat(v)
	if err != nil {
		return Change{}, err
	}
	if math.IsNaN(f) {
		return NotAvailable(), nil
	}
	return Percent(f), nil
}

var (
	_ driver.Valuer  = Change{}
	_ json.Marshaler = Change{}
)
