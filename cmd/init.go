package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/screener/store"
	"github.com/google/subcommands"
)

type initCmd struct{}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the securities database" }
func (*initCmd) Usage() string {
	return `scr init

  Creates the database file and its tables, if they do not exist yet.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {}

func (c *initCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	err := withStore(ctx, args, func(st *store.Store) error { return st.Save() })
	if err != nil {
		return failed(err)
	}
	fmt.Printf("Database ready at %s\n", settings.DB)
	return subcommands.ExitSuccess
}
