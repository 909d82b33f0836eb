package cmd

import (
	"flag"

	"github.com/etnz/screener/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors returns a predictor for each flag of fs.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}

// Completion returns the shell completion of scr, for the global flags in fs.
func Completion(fs *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Flags: flagPredictors(fs),
		Sub:   make(map[string]*complete.Command),
	}
	root.Flags["db"] = predict.Files("*.db")
	root.Flags["keys"] = predict.Files("*")
	for _, cmd := range commands(false) {
		sub := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(sub)
		root.Sub[cmd.Name()] = &complete.Command{Flags: flagPredictors(sub)}
	}
	root.Sub["perf"].Flags["symbols"] = predict.Files("*.txt")
	if topics, err := docs.All(); err == nil {
		root.Sub["topic"].Args = predict.Set(topics)
	}
	return root
}
