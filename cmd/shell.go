package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/screener/store"
	"github.com/google/subcommands"
)

type shellCmd struct{}

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "run commands from the standard input" }
func (*shellCmd) Usage() string {
	return `scr shell

  Reads commands, one per line, and runs them on the same database until
  'quit' or 'q'.
`
}

func (c *shellCmd) SetFlags(f *flag.FlagSet) {}

func (c *shellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := store.Open(ctx, settings.DB)
	if err != nil {
		return failed(err)
	}
	defer st.Close()

	if err := repl(ctx, st, os.Stdin, os.Stdout); err != nil {
		return failed(err)
	}
	return subcommands.ExitSuccess
}

// repl runs the commands read from in on st, until quit, end of input or ctx ends.
func repl(ctx context.Context, st *store.Store, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "q":
			return nil
		}
		args, err := splitArgs(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		run(ctx, st, args)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// run executes a single command line on st with a fresh commander.
func run(ctx context.Context, st *store.Store, args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("scr", flag.ContinueOnError)
	commander := subcommands.NewCommander(fs, "scr")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, cmd := range commands(true) {
		commander.Register(cmd.Command, cmd.group)
	}
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return commander.Execute(ctx, st)
}
