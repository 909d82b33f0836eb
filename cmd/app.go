// Package cmd implements the scr command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/screener/config"
	"github.com/etnz/screener/logger"
	"github.com/etnz/screener/store"
	"github.com/google/subcommands"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dbFlag       = flag.String("db", "", "path to the SQLite database (default "+config.DefaultDB+")")
	keysFlag     = flag.String("keys", "", "path to the API keys file (default "+config.DefaultKeysFile+")")
	logLevelFlag = flag.String("log-level", "", "log level: debug, info, warn or error")
	logDirFlag   = flag.String("log-dir", "", "directory of the scr.log file")
	cacheDirFlag = flag.String("cache-dir", "", "directory of the daily HTTP cache")
)

// settings are resolved by Setup.
var settings config.Config

type command struct {
	subcommands.Command
	group string
}

// commands returns the scr subcommands. The shell is left out of itself.
func commands(shell bool) []command {
	cmds := []command{
		{&initCmd{}, "database"},
		{&updateCmd{}, "database"},
		{&sqlCmd{}, "database"},
		{&viewCmd{}, "screening"},
		{&backtestCmd{}, "screening"},
		{&perfCmd{}, "screening"},
		{&topicCmd{}, "help"},
	}
	if !shell {
		cmds = append(cmds, command{&shellCmd{}, "help"})
	}
	return cmds
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range commands(false) {
		c.Register(cmd.Command, cmd.group)
	}
}

// Setup resolves the settings from the parsed global flags and initializes the logger.
func Setup() error {
	cfg, err := config.Load(config.Config{
		DB:       *dbFlag,
		KeysFile: *keysFlag,
		LogLevel: *logLevelFlag,
		LogDir:   *logDirFlag,
		CacheDir: *cacheDirFlag,
	})
	if err != nil {
		return err
	}
	settings = cfg
	return logger.Init(logger.Config{Level: cfg.LogLevel, Dir: cfg.LogDir})
}

// withStore runs f on the store passed in the Execute args by the shell, or on
// a store opened for the call.
func withStore(ctx context.Context, args []interface{}, f func(st *store.Store) error) error {
	for _, arg := range args {
		if st, ok := arg.(*store.Store); ok {
			return f(st)
		}
	}
	st, err := store.Open(ctx, settings.DB)
	if err != nil {
		return err
	}
	defer st.Close()
	return f(st)
}

// failed prints err and returns the failure status.
func failed(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// printMarkdown renders md for the terminal, or prints it raw if it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
