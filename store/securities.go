package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/screener"
	"github.com/etnz/screener/date"
)

// columns returns the quoted column list of fields.
func columns(fields []screener.Field) (cols []string, args []any) {
	for _, f := range fields {
		cols = append(cols, quote(f.Name))
		args = append(args, f.Value)
	}
	return cols, args
}

// AddNewSecurity inserts r in its kind's table. Duplicates are not checked.
func (s *Store) AddNewSecurity(ctx context.Context, r screener.Record) error {
	cols, args := columns(r.Fields())
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.Kind().Table(), strings.Join(cols, ", "), marks)
	_, err := s.exec(ctx, q, args...)
	return err
}

// ModifySecurities overwrites every row matching cond with the fields of r.
// All matching rows are updated, and their LastUpdated refreshed. It returns
// the number of rows updated.
func (s *Store) ModifySecurities(ctx context.Context, r screener.Record, cond Condition) (int64, error) {
	k := r.Kind()
	cols, args := columns(r.Fields())
	for i := range cols {
		cols[i] += " = ?"
	}
	w, wargs, err := where(k, []Condition{cond})
	if err != nil {
		return 0, err
	}
	q := fmt.Sprintf("UPDATE %s SET %s%s", k.Table(), strings.Join(cols, ", "), w)
	return s.exec(ctx, q, append(args, wargs...)...)
}

// DeleteSecurity deletes the rows equal to r on every field.
func (s *Store) DeleteSecurity(ctx context.Context, r screener.Record) (int64, error) {
	var conds []Condition
	for _, f := range r.Fields() {
		conds = append(conds, Condition{f.Name, Equal, f.Value})
	}
	return s.DeleteSecuritiesConditional(ctx, r.Kind(), conds)
}

// DeleteSecuritiesConditional deletes the rows of kind k matching all conditions.
// At least one condition is required.
func (s *Store) DeleteSecuritiesConditional(ctx context.Context, k screener.Kind, conds []Condition) (int64, error) {
	if len(conds) == 0 {
		return 0, fmt.Errorf("%w: refusing to delete all %s", ErrMalformedCondition, k)
	}
	w, args, err := where(k, conds)
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, fmt.Sprintf("DELETE FROM %s%s", k.Table(), w), args...)
}

// GetSecurities returns the records of kind k matching all conditions, sorted
// by orders. Without orders, the row order is unspecified.
func (s *Store) GetSecurities(ctx context.Context, k screener.Kind, conds []Condition, orders []Order) ([]screener.Record, error) {
	w, args, err := where(k, conds)
	if err != nil {
		return nil, err
	}
	o, err := orderBy(k, orders)
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(k.Columns()))
	for i, c := range k.Columns() {
		cols[i] = quote(c)
	}
	q := fmt.Sprintf("SELECT %s FROM %s%s%s", strings.Join(cols, ", "), k.Table(), w, o)
	return s.scan(ctx, k, q, args...)
}

// scan runs q and scans every row in a new record of kind k.
func (s *Store) scan(ctx context.Context, k screener.Kind, q string, args ...any) ([]screener.Record, error) {
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []screener.Record
	for rows.Next() {
		r := k.New()
		if err := rows.Scan(r.Dest()...); err != nil {
			return nil, fmt.Errorf("failed to read %s row: %w", k, err)
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// typed converts records to their concrete type.
func typed[T screener.Record](records []screener.Record, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	res := make([]T, len(records))
	for i, r := range records {
		res[i] = r.(T)
	}
	return res, nil
}

// Listings returns the listed equities matching conds, sorted by orders.
func (s *Store) Listings(ctx context.Context, conds []Condition, orders []Order) ([]*screener.EquityListing, error) {
	return typed[*screener.EquityListing](s.GetSecurities(ctx, screener.KindListing, conds, orders))
}

// Equities returns the equities matching conds, sorted by orders.
func (s *Store) Equities(ctx context.Context, conds []Condition, orders []Order) ([]*screener.Equity, error) {
	return typed[*screener.Equity](s.GetSecurities(ctx, screener.KindEquity, conds, orders))
}

// Options returns the options matching conds, sorted by orders.
func (s *Store) Options(ctx context.Context, conds []Condition, orders []Order) ([]*screener.Option, error) {
	return typed[*screener.Option](s.GetSecurities(ctx, screener.KindOption, conds, orders))
}

// Stale returns the equities last updated before cutoff.
func (s *Store) Stale(ctx context.Context, cutoff date.Date) ([]*screener.Equity, error) {
	return s.Equities(ctx, []Condition{{"LastUpdated", Less, cutoff}}, []Order{{"Symbol", Ascending}})
}

// MissingEquities returns the listings that have no equity yet.
func (s *Store) MissingEquities(ctx context.Context) ([]*screener.EquityListing, error) {
	const q = `SELECT Symbol, CompanyName FROM ListedEquities
    WHERE Symbol NOT IN (SELECT Symbol FROM Equities WHERE Symbol IS NOT NULL)
    ORDER BY Symbol ASC`
	return typed[*screener.EquityListing](s.scan(ctx, screener.KindListing, q))
}

// ListingsWithoutOptions returns the listings that have no option yet.
func (s *Store) ListingsWithoutOptions(ctx context.Context) ([]*screener.EquityListing, error) {
	const q = `SELECT Symbol, CompanyName FROM ListedEquities
    WHERE Symbol NOT IN (SELECT CompanySymbol FROM Options WHERE CompanySymbol IS NOT NULL)
    ORDER BY Symbol ASC`
	return typed[*screener.EquityListing](s.scan(ctx, screener.KindListing, q))
}

// ExecuteRawStatement runs an arbitrary statement and returns its rows as
// column/value maps. The statement is not validated in any way.
func (s *Store) ExecuteRawStatement(ctx context.Context, statement string) ([]map[string]any, error) {
	rows, err := s.query(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var res []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				values[i] = string(b)
			}
			row[c] = values[i]
		}
		res = append(res, row)
	}
	return res, rows.Err()
}
