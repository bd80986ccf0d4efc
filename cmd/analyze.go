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

type analyzeCmd struct {
	from, to string
	by       string
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "report the performance of closed trades" }
func (*analyzeCmd) Usage() string {
	return `lotbook analyze [-from <day>] [-to <day>] [-by <note>]

  Replays the trade log and reports every round trip closed by a sell: its
  entry and exit days, its average cost and exit price, and its P&L. Trades
  are summed per currency into a win rate, a profit factor and an average
  holding period, then grouped per security.

  -from and -to keep the trades exited within that window. The whole log is
  still replayed, so a trade entered before -from keeps its cost.

  -by groups the trades by a note of their position as well, for instance
  -by entry_reason.

Example:
$ lotbook analyze -from 2024-01-01 -by entry_reason

`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "first exit day to include (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "last exit day to include (YYYY-MM-DD)")
	f.StringVar(&c.by, "by", "", "also group trades by this position note")
}

func (c *analyzeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	notes, err := decodeAnnotations(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading annotations: %v\n", err)
		return subcommands.ExitFailure
	}

	// Both walks share the summarizer's memo, so each lot is replayed once.
	open := s.Summarize(records)
	trades := lotbook.ExitedWithin(s.ClosedTrades(records), window)
	log.Debug().Int("records", len(records)).Int("trades", len(trades)).Int("open", len(open)).Msg("trades analyzed")

	a := renderer.NewAnalysis(trades, notes, strings.TrimSpace(c.by), window, len(open))
	printMarkdown(renderer.RenderAnalysis(a))
	return subcommands.ExitSuccess
}
