package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/lotbook"
	"github.com/etnz/lotbook/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type sizeCmd struct {
	entry   string
	stop    string
	capital string
	risk    string
	market  string
}

func (*sizeCmd) Name() string     { return "size" }
func (*sizeCmd) Synopsis() string { return "compute how many shares to buy for a given stop loss" }
func (*sizeCmd) Usage() string {
	return `lotbook size -entry <price> -stop <price> [-capital <amount>] [-risk <percent>] [-market DOMESTIC|FOREIGN]

  Computes the largest position whose loss, if the stop loss is hit, stays
  within the risk budget: capital × risk% / (entry − stop) shares.
  Capital and risk default to $LOTBOOK_TOTAL_CAPITAL (1,000,000) and
  $LOTBOOK_RISK_PCT (0.2).

Usage Examples:
$ lotbook size -entry 1000 -stop 950
`
}

func (c *sizeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.entry, "entry", "", "entry price")
	f.StringVar(&c.stop, "stop", "", "stop loss price")
	f.StringVar(&c.capital, "capital", "", "total capital, overrides the configuration")
	f.StringVar(&c.risk, "risk", "", "percent of the capital at risk per trade, overrides the configuration")
	f.StringVar(&c.market, "market", "DOMESTIC", "market of the security, sets the currency")
}

// parseDecimal parses the value of flag name.
func parseDecimal(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid -%s %q: %w", name, value, err)
	}
	return d, nil
}

func (c *sizeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	market, err := lotbook.ParseMarket(c.market)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	entry, err := parseDecimal("entry", c.entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	stop, err := parseDecimal("stop", c.stop)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	r := cfg.Risk()
	if c.capital != "" {
		if r.TotalCapital, err = parseDecimal("capital", c.capital); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.risk != "" {
		if r.RiskPercent, err = parseDecimal("risk", c.risk); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	s, err := r.Size(entry, stop)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(renderer.RenderSizing(renderer.NewSizing(r, s, market.Currency())))
	return subcommands.ExitSuccess
}
