package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/lotbook"
	"github.com/google/subcommands"
)

type importCmd struct {
	replace bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "add normalized trade records to the trade log" }
func (*importCmd) Usage() string {
	return `lotbook import [-replace] <file.jsonl>...

  Reads normalized trade records (one JSON object per line) and appends them
  to the trade log. With -replace, the trade log is replaced instead. Files
  are fully decoded before the trade log is touched.

Usage Examples:
# Append last month's executions.
$ lotbook import 2024-06.jsonl

`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.replace, "replace", false, "replace the whole trade log instead of appending")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no file to import")
		return subcommands.ExitUsageError
	}
	cfg, log, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}

	var imported []lotbook.TradeRecord
	for _, name := range f.Args() {
		records, err := readRecords(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		for _, r := range records {
			if r.Action == lotbook.UnknownAction {
				log.Warn().Str("file", name).Str("security", r.SecurityID).Str("action", r.RawAction).Msg("record with an unknown action will not count")
			}
		}
		imported = append(imported, records...)
	}

	var book []lotbook.TradeRecord
	if !c.replace {
		if book, err = decodeTrades(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading trades: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	book = append(book, imported...)

	if err := encodeFile(cfg.TradesFile, func(w io.Writer) error { return lotbook.EncodeRecords(w, book) }); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing trades: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Imported %d records into %s (%d total)\n", len(imported), cfg.TradesFile, len(book))
	return subcommands.ExitSuccess
}

// readRecords decodes a whole file of records. Unlike the trade log, the file must exist.
func readRecords(name string) ([]lotbook.TradeRecord, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return lotbook.DecodeRecords(f)
}
