package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/lotbook"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type overrideCmd struct {
	security string
	lot      string
	quantity string
	average  string
	name     string
	market   string
	remove   bool
}

func (*overrideCmd) Name() string     { return "override" }
func (*overrideCmd) Synopsis() string { return "correct, add or delete a position by hand" }
func (*overrideCmd) Usage() string {
	return `lotbook override -security <id> [-lot CASH|MARGIN] -q <quantity> [-avg <cost>] [-name <name>] [-market DOMESTIC|FOREIGN]
lotbook override -security <id> [-lot CASH|MARGIN] -remove

  Records a manual override that replaces the computed position of a
  security and lot class. A quantity of 0 deletes the position from the
  table. -name and -market are only used when the override adds a position
  the trade log does not know. -remove drops the override itself and gives
  the position back to the trade log.

`
}

func (c *overrideCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.security, "security", "", "security id")
	f.StringVar(&c.lot, "lot", "CASH", "lot class: CASH or MARGIN")
	f.StringVar(&c.quantity, "q", "", "quantity, 0 deletes the position")
	f.StringVar(&c.average, "avg", "0", "average cost per unit")
	f.StringVar(&c.name, "name", "", "security name, for added positions")
	f.StringVar(&c.market, "market", "", "market of added positions: DOMESTIC (default) or FOREIGN")
	f.BoolVar(&c.remove, "remove", false, "remove the override instead of setting it")
}

// override builds the override described by the flags.
func (c *overrideCmd) override() (lotbook.ManualOverride, error) {
	o := lotbook.ManualOverride{SecurityID: strings.TrimSpace(c.security), SecurityName: strings.TrimSpace(c.name)}
	if o.SecurityID == "" {
		return o, fmt.Errorf("-security is required")
	}
	var err error
	if o.Lot, err = lotbook.ParseLotClass(c.lot); err != nil {
		return o, err
	}
	if c.remove {
		return o, nil
	}
	if c.quantity == "" {
		return o, fmt.Errorf("-q is required")
	}
	if o.Quantity, err = decimal.NewFromString(c.quantity); err != nil {
		return o, fmt.Errorf("invalid quantity %q: %w", c.quantity, err)
	}
	if o.AverageCost, err = decimal.NewFromString(c.average); err != nil {
		return o, fmt.Errorf("invalid average cost %q: %w", c.average, err)
	}
	if o.AverageCost.IsNegative() {
		return o, fmt.Errorf("average cost must not be negative")
	}
	if c.market != "" {
		m, err := lotbook.ParseMarket(c.market)
		if err != nil {
			return o, err
		}
		o.Market = &m
	}
	return o, nil
}

func (c *overrideCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	o, err := c.override()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, _, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	overrides, err := decodeOverrides(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading overrides: %v\n", err)
		return subcommands.ExitFailure
	}

	var msg string
	switch {
	case c.remove:
		overrides = lotbook.RemoveOverride(overrides, o.Key())
		msg = fmt.Sprintf("Removed override of %s", o.Key())
	case o.Deletes():
		overrides = lotbook.UpsertOverride(overrides, o)
		msg = fmt.Sprintf("%s is now deleted from the position table", o.Key())
	default:
		overrides = lotbook.UpsertOverride(overrides, o)
		msg = fmt.Sprintf("%s is now %s @ %s", o.Key(), o.Quantity, o.AverageCost)
	}

	if err := encodeFile(cfg.OverridesFile, func(w io.Writer) error { return lotbook.EncodeOverrides(w, overrides) }); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing overrides: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(stdout, msg)
	return subcommands.ExitSuccess
}
