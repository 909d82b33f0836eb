package store

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/etnz/screener"
)

var (
	// ErrUnknownColumn is returned when a condition or an order names a column the table does not have.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrMalformedCondition is returned when a condition value does not fit its operator.
	ErrMalformedCondition = errors.New("malformed condition")
)

// Operator is a relational operator of a Condition.
type Operator string

const (
	Equal          Operator = "="
	NotEqual       Operator = "<>"
	Less           Operator = "<"
	LessOrEqual    Operator = "<="
	Greater        Operator = ">"
	GreaterOrEqual Operator = ">="
	Between        Operator = "BETWEEN"
	Like           Operator = "LIKE"
	In             Operator = "IN"
)

// Operators lists the supported operators, longest symbols first.
var Operators = []Operator{LessOrEqual, GreaterOrEqual, NotEqual, Equal, Less, Greater, Between, Like, In}

// ParseOperator parses an operator symbol or keyword (case insensitive). "!=" is an alias of "<>".
func ParseOperator(s string) (Operator, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "!=" {
		return NotEqual, nil
	}
	for _, op := range Operators {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: unknown operator %q", ErrMalformedCondition, s)
}

// Condition restricts rows to those where Column Op Value holds.
//
// Between takes a two elements slice or array. In takes a scalar or a non
// empty slice. Equal and NotEqual against nil or "N/A" test for NULL.
type Condition struct {
	Column string
	Op     Operator
	Value  any
}

func (c Condition) String() string { return fmt.Sprintf("%s %s %v", c.Column, c.Op, c.Value) }

// Direction of an Order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// ParseDirection accepts ascending, asc, a, descending, desc and d (case insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "ascending", "asc", "a":
		return Ascending, nil
	case "descending", "desc", "d":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("unknown ordering %q", s)
	}
}

// Order sorts rows by Column. A list of orders applies left to right.
type Order struct {
	Column    string
	Direction Direction
}

// quote returns the column name, double quoted when it begins with a digit.
func quote(col string) string {
	if col != "" && unicode.IsDigit(rune(col[0])) {
		return `"` + col + `"`
	}
	return col
}

// column validates col against the kind's columns and quotes it.
func column(k screener.Kind, col string) (string, error) {
	if !k.HasColumn(col) {
		return "", fmt.Errorf("%w %q in %s", ErrUnknownColumn, col, k.Table())
	}
	return quote(col), nil
}

// isNull reports whether v stands for SQL NULL.
func isNull(v any) bool {
	if v == nil || v == screener.NA {
		return true
	}
	if valuer, ok := v.(driver.Valuer); ok {
		x, err := valuer.Value()
		return err == nil && x == nil
	}
	return false
}

// list returns the elements of v when it is a slice or an array (but not bytes).
func list(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
	case reflect.Array:
	default:
		return nil, false
	}
	res := make([]any, rv.Len())
	for i := range res {
		res[i] = rv.Index(i).Interface()
	}
	return res, true
}

// compile returns the SQL predicate of c, with ? placeholders, and its arguments.
func (c Condition) compile(k screener.Kind) (string, []any, error) {
	col, err := column(k, c.Column)
	if err != nil {
		return "", nil, err
	}
	values, isList := list(c.Value)
	switch c.Op {
	case Between:
		if !isList || len(values) != 2 {
			return "", nil, fmt.Errorf("%w: %s BETWEEN requires exactly two bounds, got %v", ErrMalformedCondition, c.Column, c.Value)
		}
		return col + " BETWEEN ? AND ?", values, nil
	case In:
		if !isList {
			values = []any{c.Value}
		}
		if len(values) == 0 {
			return "", nil, fmt.Errorf("%w: %s IN requires at least one value", ErrMalformedCondition, c.Column)
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
		return col + " IN (" + marks + ")", values, nil
	case Equal, NotEqual, Less, LessOrEqual, Greater, GreaterOrEqual, Like:
		if isList {
			return "", nil, fmt.Errorf("%w: %s %s requires a single value, got %v", ErrMalformedCondition, c.Column, c.Op, c.Value)
		}
		if isNull(c.Value) {
			switch c.Op {
			case Equal:
				return col + " IS NULL", nil, nil
			case NotEqual:
				return col + " IS NOT NULL", nil, nil
			}
		}
		return col + " " + string(c.Op) + " ?", []any{c.Value}, nil
	default:
		return "", nil, fmt.Errorf("%w: unknown operator %q", ErrMalformedCondition, c.Op)
	}
}

// where compiles AND-combined conditions into a WHERE clause. It is empty when there is no condition.
func where(k screener.Kind, conditions []Condition) (string, []any, error) {
	if len(conditions) == 0 {
		return "", nil, nil
	}
	preds := make([]string, 0, len(conditions))
	var args []any
	for _, c := range conditions {
		pred, a, err := c.compile(k)
		if err != nil {
			return "", nil, err
		}
		preds = append(preds, pred)
		args = append(args, a...)
	}
	return " WHERE (" + strings.Join(preds, " AND ") + ")", args, nil
}

// orderBy compiles orders into an ORDER BY clause. It is empty when there is no order.
func orderBy(k screener.Kind, orders []Order) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		col, err := column(k, o.Column)
		if err != nil {
			return "", err
		}
		parts = append(parts, col+" "+o.Direction.String())
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// Literal renders v the way statements used to be written before they were
// parameterized: strings double quoted with single quotes doubled, other
// values in their natural text form.
func Literal(v any) string {
	if valuer, ok := v.(driver.Valuer); ok {
		if x, err := valuer.Value(); err == nil {
			v = x
		}
	}
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return `"` + strings.ReplaceAll(x, "'", "''") + `"`
	default:
		return fmt.Sprintf("%v", x)
	}
}

// render replaces each placeholder of query with the Literal of its argument.
// It is only used to log statements.
func render(query string, args []any) string {
	var b strings.Builder
	i := 0
	for _, r := range query {
		if r == '?' && i < len(args) {
			b.WriteString(Literal(args[i]))
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
