package cmd

import (
	"flag"
	"strings"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete handles shell completion requests for the program name, and exits
// when it did. Set COMP_INSTALL=1 to install the completion in the shell.
//
// It must be called before parsing the command line.
func Complete(name string) {
	completion(flag.CommandLine).Complete(name)
}

// completion builds the completion tree of the registered subcommands.
func completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(global),
	}
	for _, e := range commands() {
		root.Sub[e.cmd.Name()] = commandCompletion(e.cmd)
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	return root
}

func commandCompletion(c subcommands.Command) *complete.Command {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	cc := &complete.Command{Flags: flagPredictors(fs)}
	switch c.(type) {
	case *importCmd:
		cc.Args = predict.Files("*.jsonl")
	case *annotateCmd:
		cc.Args = predict.Set{"entry_reason=", "exit_plan=", "stop=", "target="}
	}
	return cc
}

// flagPredictors predicts flag values from their name and type.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		switch {
		case isBool(f):
			flags[f.Name] = predict.Nothing
		case strings.HasSuffix(f.Name, "-file"):
			flags[f.Name] = predict.Files("*.jsonl")
		case f.Name == "lot":
			flags[f.Name] = predict.Set{"CASH", "MARGIN"}
		case f.Name == "market":
			flags[f.Name] = predict.Set{"DOMESTIC", "FOREIGN"}
		case f.Name == "by":
			flags[f.Name] = predict.Set{"entry_reason", "exit_plan"}
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
