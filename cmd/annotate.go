package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/etnz/lotbook"
	"github.com/google/subcommands"
)

type annotateCmd struct {
	security string
	lot      string
}

func (*annotateCmd) Name() string     { return "annotate" }
func (*annotateCmd) Synopsis() string { return "attach notes to a position" }
func (*annotateCmd) Usage() string {
	return `lotbook annotate -security <id> [-lot CASH|MARGIN] [key=value]...

  Stores free form notes on a position, such as the entry reason or the exit
  plan. An empty value removes the key. Without key=value arguments, prints
  the notes of the position.

Usage Examples:
$ lotbook annotate -security 7203 entry_reason=breakout stop=2450

`
}

func (c *annotateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.security, "security", "", "security id")
	f.StringVar(&c.lot, "lot", "CASH", "lot class: CASH or MARGIN")
}

// parseNotes splits key=value arguments.
func parseNotes(args []string) ([][2]string, error) {
	var notes [][2]string
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid note %q, want key=value", arg)
		}
		notes = append(notes, [2]string{key, strings.TrimSpace(value)})
	}
	return notes, nil
}

func (c *annotateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id := strings.TrimSpace(c.security)
	if id == "" {
		fmt.Fprintln(os.Stderr, "Error: -security is required")
		return subcommands.ExitUsageError
	}
	lot, err := lotbook.ParseLotClass(c.lot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	notes, err := parseNotes(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, _, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := decodeAnnotations(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading annotations: %v\n", err)
		return subcommands.ExitFailure
	}
	key := lotbook.LotKey{SecurityID: id, Lot: lot}

	if len(notes) == 0 {
		current := a.Get(key)
		var b strings.Builder
		fmt.Fprintf(&b, "# Notes of %s\n\n", key)
		if len(current) == 0 {
			b.WriteString("_No note._\n")
		}
		for _, k := range slices.Sorted(maps.Keys(current)) {
			fmt.Fprintf(&b, "- **%s**: %s\n", k, current[k])
		}
		printMarkdown(b.String())
		return subcommands.ExitSuccess
	}

	for _, n := range notes {
		a.Set(key, n[0], n[1])
	}
	if err := encodeFile(cfg.AnnotationsFile, func(w io.Writer) error { return lotbook.EncodeAnnotations(w, a) }); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing annotations: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "%s has %d notes\n", key, a.Count(key))
	return subcommands.ExitSuccess
}
