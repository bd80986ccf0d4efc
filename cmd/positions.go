package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/lotbook"
	"github.com/etnz/lotbook/date"
	"github.com/etnz/lotbook/renderer"
	"github.com/google/subcommands"
)

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	json        bool
	noOverrides bool
	asOf        string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display the current position table" }
func (*positionsCmd) Usage() string {
	return `lotbook positions [-json] [-no-overrides] [-as-of <day>]

  Recomputes every position from the full trade log, per security and per
  lot class (cash or margin), with its moving-average cost, then applies the
  manual overrides.

  With -as-of, only the records traded on or before that day are replayed.
  Overrides describe the broker's current view, so they are not applied to a
  past table.

`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the table as JSONL instead of markdown")
	f.BoolVar(&c.noOverrides, "no-overrides", false, "show the computed table, ignoring manual overrides")
	f.StringVar(&c.asOf, "as-of", "", "reconstruct the table as of that day (YYYY-MM-DD)")
}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf, err := parseDate("as-of", c.asOf)
	if err != nil {
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
	if !asOf.IsZero() {
		records = lotbook.Within(records, date.Until(asOf))
	}
	positions := s.Summarize(records)

	if !c.noOverrides && asOf.IsZero() {
		overrides, err := decodeOverrides(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading overrides: %v\n", err)
			return subcommands.ExitFailure
		}
		positions = lotbook.Merge(positions, overrides)
	}
	log.Debug().Int("records", len(records)).Int("positions", len(positions)).Msg("position table computed")

	if c.json {
		if err := lotbook.EncodePositions(stdout, positions); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing positions: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	notes, err := decodeAnnotations(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading annotations: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderPositions(renderer.NewPositionTable(positions, notes)))
	return subcommands.ExitSuccess
}

// parseDate parses the value of flag name. The empty value is the zero date.
func parseDate(name, value string) (date.Date, error) {
	if value == "" {
		return date.Date{}, nil
	}
	d, err := date.Parse(value)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid -%s: %w", name, err)
	}
	return d, nil
}
