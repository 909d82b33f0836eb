package cmd

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/etnz/screener/store"
	"github.com/mattn/go-shellwords"
)

// conditions is a repeatable -where flag.
type conditions []store.Condition

func (c *conditions) String() string {
	var s []string
	for _, cond := range *c {
		s = append(s, cond.String())
	}
	return strings.Join(s, " AND ")
}

func (c *conditions) Set(v string) error {
	cond, err := parseCondition(v)
	if err != nil {
		return err
	}
	*c = append(*c, cond)
	return nil
}

var conditionRegex = regexp.MustCompile(`^\s*(\w+)\s*(<=|>=|<>|!=|=|<|>|\b(?i:between|like|in)\b)\s*(.*?)\s*$`)

// parseCondition parses "COLUMN OP VALUE". BETWEEN and IN take comma
// separated values.
func parseCondition(s string) (store.Condition, error) {
	m := conditionRegex.FindStringSubmatch(s)
	if m == nil {
		return store.Condition{}, fmt.Errorf("%w: %q, want COLUMN OP VALUE", store.ErrMalformedCondition, s)
	}
	op, err := store.ParseOperator(m[2])
	if err != nil {
		return store.Condition{}, err
	}
	cond := store.Condition{Column: m[1], Op: op}
	switch op {
	case store.Between, store.In:
		var values []any
		for _, v := range strings.Split(m[3], ",") {
			values = append(values, parseValue(v))
		}
		cond.Value = values
	default:
		cond.Value = parseValue(m[3])
	}
	return cond, nil
}

// parseValue returns a number, or the string without its quotes.
func parseValue(s string) any {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// parseOrders parses "COLUMN [asc|desc], ...".
func parseOrders(s string) ([]store.Order, error) {
	var orders []store.Order
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	for _, part := range strings.Split(s, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 || len(fields) > 2 {
			return nil, fmt.Errorf("invalid sort %q, want COLUMN [asc|desc]", part)
		}
		o := store.Order{Column: fields[0], Direction: store.Ascending}
		if len(fields) == 2 {
			d, err := store.ParseDirection(fields[1])
			if err != nil {
				return nil, err
			}
			o.Direction = d
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// window selects start:stop:step like a slice expression, every bound optional.
// Negative bounds count from the end, a negative step walks backward.
type window struct {
	start, stop *int
	step        int
}

func (w window) String() string {
	bound := func(b *int) string {
		if b == nil {
			return ""
		}
		return strconv.Itoa(*b)
	}
	return fmt.Sprintf("%s:%s:%d", bound(w.start), bound(w.stop), w.step)
}

var errSlice = errors.New("invalid slice")

// parseWindow parses "start:stop[:step]".
func parseWindow(s string) (window, error) {
	w := window{step: 1}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return w, fmt.Errorf("%w %q, want start:stop[:step]", errSlice, s)
	}
	bound := func(p string) (*int, error) {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", errSlice, s, err)
		}
		return &n, nil
	}
	var err error
	if w.start, err = bound(parts[0]); err != nil {
		return w, err
	}
	if w.stop, err = bound(parts[1]); err != nil {
		return w, err
	}
	if len(parts) == 3 {
		step, err := bound(parts[2])
		if err != nil {
			return w, err
		}
		if step != nil {
			w.step = *step
		}
	}
	if w.step == 0 {
		return w, fmt.Errorf("%w %q: step cannot be zero", errSlice, s)
	}
	return w, nil
}

// indices returns the positions selected by w in a sequence of length n.
func (w window) indices(n int) []int {
	resolve := func(b *int, def, lo, hi int) int {
		if b == nil {
			return def
		}
		i := *b
		if i < 0 {
			i += n
		}
		return min(max(i, lo), hi)
	}
	var res []int
	if w.step > 0 {
		start, stop := resolve(w.start, 0, 0, n), resolve(w.stop, n, 0, n)
		for i := start; i < stop; i += w.step {
			res = append(res, i)
		}
		return res
	}
	start, stop := resolve(w.start, n-1, -1, n-1), resolve(w.stop, -1, -1, n-1)
	for i := start; i > stop; i += w.step {
		res = append(res, i)
	}
	return res
}

// apply returns the elements of xs selected by w.
func apply[T any](w window, xs []T) []T {
	idx := w.indices(len(xs))
	res := make([]T, len(idx))
	for i, j := range idx {
		res[i] = xs[j]
	}
	return res
}

// splitArgs splits a command line into arguments, honoring quotes and
// backslash escapes. Unquoted shell operators are rejected: a condition like
// 1Y>20 must be quoted.
func splitArgs(line string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("cannot split %q: %w", line, err)
	}
	if p.Position >= 0 {
		return nil, fmt.Errorf("unquoted %q in %q", []rune(line)[p.Position], line)
	}
	return args, nil
}
