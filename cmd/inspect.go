package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/lotbook"
	"github.com/etnz/lotbook/date"
	"github.com/etnz/lotbook/renderer"
	"github.com/google/subcommands"
)

type inspectCmd struct {
	from, to string
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "show the records behind the positions of a security" }
func (*inspectCmd) Usage() string {
	return `lotbook inspect [-from <day>] [-to <day>] <security>

  Lists the records of one security in chronological order, their quantity
  sums per account type and action, and the resulting positions. Use it to
  find out why a position looks wrong: overrides are not applied here.

  -from and -to restrict the records to a window of trade days. The positions
  are then those the window alone would produce.

`
}

func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "first trade day to include (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "last trade day to include (YYYY-MM-DD)")
}

func (c *inspectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: inspect takes exactly one security id")
		return subcommands.ExitUsageError
	}
	id := strings.TrimSpace(f.Arg(0))
	var window date.Range
	var err error
	if window.From, err = parseDate("from", c.from); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if window.To, err = parseDate("to", c.to); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, log, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	s, err := newSummarizer(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	records, err := decodeTrades(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading trades: %v\n", err)
		return subcommands.ExitFailure
	}

	b := s.Breakdown(lotbook.Within(records, window), id)
	if len(b.Records) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: no record for security %q\n", id)
	}
	printMarkdown(renderer.RenderBreakdown(renderer.NewBreakdown(b)))
	return subcommands.ExitSuccess
}
