package cmd

import (
	"context"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/screener"
	"github.com/etnz/screener/renderer"
	"github.com/etnz/screener/store"
	"github.com/google/subcommands"
)

type viewCmd struct {
	listings, equities, options, all bool
	where                            conditions
	sort                             string
	slice                            string
}

func (*viewCmd) Name() string     { return "view" }
func (*viewCmd) Synopsis() string { return "filter, sort and slice the stored securities" }
func (*viewCmd) Usage() string {
	return `scr view [-listings|-equities|-options|-all] [-where "COLUMN OP VALUE"]... [-sort "COLUMN [asc|desc], ..."] [-slice start:stop[:step]]

  Prints the securities matching all the -where conditions.
`
}

func (c *viewCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.listings, "listings", false, "view the listed equities")
	f.BoolVar(&c.equities, "equities", false, "view the equities (default)")
	f.BoolVar(&c.options, "options", false, "view the options contracts")
	f.BoolVar(&c.all, "all", false, "view every table")
	f.Var(&c.where, "where", "condition `COLUMN OP VALUE`, repeatable")
	f.StringVar(&c.sort, "sort", "", "sort `COLUMN [asc|desc], ...`")
	f.StringVar(&c.slice, "slice", "", "keep the rows `start:stop[:step]`, negative indices count from the end")
}

// kinds returns the selected tables.
func (c *viewCmd) kinds() []screener.Kind {
	if c.all {
		return screener.Kinds
	}
	var kinds []screener.Kind
	if c.listings {
		kinds = append(kinds, screener.KindListing)
	}
	if c.equities {
		kinds = append(kinds, screener.KindEquity)
	}
	if c.options {
		kinds = append(kinds, screener.KindOption)
	}
	if len(kinds) == 0 {
		kinds = []screener.Kind{screener.KindEquity}
	}
	return kinds
}

// scope returns the conditions and orders of a multi-table view that apply to
// k. Orders on columns k does not have are dropped. It is false when a
// condition names a column k does not have.
func scope(k screener.Kind, conds []store.Condition, orders []store.Order) ([]store.Condition, []store.Order, bool) {
	for _, cond := range conds {
		if !k.HasColumn(cond.Column) {
			return nil, nil, false
		}
	}
	var kept []store.Order
	for _, o := range orders {
		if k.HasColumn(o.Column) {
			kept = append(kept, o)
		}
	}
	return conds, kept, true
}

func (c *viewCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	orders, err := parseOrders(c.sort)
	if err != nil {
		return failed(err)
	}
	var w *window
	if c.slice != "" {
		win, err := parseWindow(c.slice)
		if err != nil {
			return failed(err)
		}
		w = &win
	}

	var b strings.Builder
	err = withStore(ctx, args, func(st *store.Store) error {
		kinds := c.kinds()
		for _, k := range kinds {
			conds, orders := []store.Condition(c.where), orders
			if len(kinds) > 1 {
				fmt.Fprintf(&b, "## %s\n\n", strings.ToUpper(k.String()[:1])+k.String()[1:])
				var ok bool
				if conds, orders, ok = scope(k, conds, orders); !ok {
					fmt.Fprintf(&b, "No %s column to filter on.\n\n", k)
					continue
				}
			}
			if w != nil && len(orders) > 0 {
				// rows without a value would otherwise come first or last.
				conds = append(slices.Clip(conds), store.Condition{Column: orders[0].Column, Op: store.NotEqual, Value: nil})
			}
			records, err := st.GetSecurities(ctx, k, conds, orders)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			if w != nil {
				records = apply(*w, records)
			}
			b.WriteString(renderer.Records(k, records))
			fmt.Fprintf(&b, "\n%d %s\n\n", len(records), k)
		}
		return nil
	})
	if err != nil {
		return failed(err)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
