// Package cmd implements the CLI application to reconstruct positions from a
// trade log.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/lotbook"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, e := range commands() {
		c.Register(e.cmd, e.group)
	}
}

type entry struct {
	cmd   subcommands.Command
	group string
}

func commands() []entry {
	return []entry{
		{&positionsCmd{}, "positions"},
		{&inspectCmd{}, "positions"},
		{&analyzeCmd{}, "positions"},
		{&importCmd{}, "book"},
		{&overrideCmd{}, "book"},
		{&annotateCmd{}, "book"},
		{&sizeCmd{}, "risk"},
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	tradesFile      = flag.String("trades-file", "", "Path to the trade log (JSONL). Defaults to $LOTBOOK_TRADES_FILE or trades.jsonl")
	overridesFile   = flag.String("overrides-file", "", "Path to the manual overrides (JSONL). Defaults to $LOTBOOK_OVERRIDES_FILE or overrides.jsonl")
	annotationsFile = flag.String("annotations-file", "", "Path to the position notes (JSONL). Defaults to $LOTBOOK_ANNOTATIONS_FILE or annotations.jsonl")
	verbose         = flag.Bool("v", false, "log debug diagnostics to stderr")
	raw             = flag.Bool("raw", false, "print markdown as is, without terminal styling")
	keninExclude    optionalString
)

func init() {
	flag.Var(&keninExclude, "kenin-exclude", "comma separated actions for which a KENIN row is an ordinary trade. Defaults to $LOTBOOK_KENIN_EXCLUDE or MARGIN_OPEN_BUY,MARGIN_CLOSE_SELL")
}

// stdout is where commands write their output.
var stdout io.Writer = os.Stdout

// optionalString is a string flag that knows whether it was set, so that an
// explicit empty value can be told apart from the default.
type optionalString struct {
	value string
	set   bool
}

func (s *optionalString) String() string { return s.value }
func (s *optionalString) Set(v string) error {
	s.value, s.set = v, true
	return nil
}

// settings returns the configuration, command line flags taking precedence
// over the environment.
func settings() (*Config, zerolog.Logger, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if *tradesFile != "" {
		cfg.TradesFile = *tradesFile
	}
	if *overridesFile != "" {
		cfg.OverridesFile = *overridesFile
	}
	if *annotationsFile != "" {
		cfg.AnnotationsFile = *annotationsFile
	}
	if keninExclude.set {
		cfg.KeninExclude = keninExclude.value
		if err := cfg.Validate(); err != nil {
			return nil, zerolog.Nop(), err
		}
	}
	return cfg, newLogger(os.Stderr, cfg.LogLevel, *verbose), nil
}

// newSummarizer returns the summarizer configured by cfg. Its memo lives as
// long as the command, so a command asking for positions and closed trades
// walks each lot once.
func newSummarizer(cfg *Config, log zerolog.Logger) (*lotbook.Summarizer, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	return lotbook.NewSummarizer(
		lotbook.WithPolicy(policy),
		lotbook.WithLogger(log),
		lotbook.WithMemo(lotbook.NewMemo(0)),
	), nil
}

// decodeFile decodes the file at path. A missing file decodes as the zero value.
func decodeFile[T any](path string, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return zero, nil
	}
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := decode(f)
	if err != nil {
		return zero, fmt.Errorf("could not decode %q: %w", path, err)
	}
	return v, nil
}

// encodeFile replaces the file at path with what encode writes.
func encodeFile(path string, encode func(io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".lotbook-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("could not encode %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

func decodeTrades(cfg *Config) ([]lotbook.TradeRecord, error) {
	return decodeFile(cfg.TradesFile, lotbook.DecodeRecords)
}

func decodeOverrides(cfg *Config) ([]lotbook.ManualOverride, error) {
	return decodeFile(cfg.OverridesFile, lotbook.DecodeOverrides)
}

func decodeAnnotations(cfg *Config) (*lotbook.Annotations, error) {
	a, err := decodeFile(cfg.AnnotationsFile, lotbook.DecodeAnnotations)
	if a == nil && err == nil {
		a = lotbook.NewAnnotations()
	}
	return a, err
}

// printMarkdown renders md for the terminal, unless -raw is set.
func printMarkdown(md string) {
	if *raw {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
