package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/screener/renderer"
	"github.com/etnz/screener/store"
	"github.com/google/subcommands"
)

type sqlCmd struct{}

func (*sqlCmd) Name() string     { return "sql" }
func (*sqlCmd) Synopsis() string { return "run a raw SQL statement" }
func (*sqlCmd) Usage() string {
	return `scr sql <statement>

  Runs the statement on the database, prints the returned rows, and saves.
  The statement is not validated.
`
}

func (c *sqlCmd) SetFlags(f *flag.FlagSet) {}

func (c *sqlCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a statement is required.")
		return subcommands.ExitUsageError
	}
	statement := strings.Join(f.Args(), " ")

	var rows []map[string]any
	err := withStore(ctx, args, func(st *store.Store) (err error) {
		if rows, err = st.ExecuteRawStatement(ctx, statement); err != nil {
			return err
		}
		return st.Save()
	})
	if err != nil {
		return failed(err)
	}
	printMarkdown(renderer.Rows(rows))
	return subcommands.ExitSuccess
}
