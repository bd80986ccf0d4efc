package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sandbox points every book file to a fresh temporary directory.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LOTBOOK_TRADES_FILE", filepath.Join(dir, "trades.jsonl"))
	t.Setenv("LOTBOOK_OVERRIDES_FILE", filepath.Join(dir, "overrides.jsonl"))
	t.Setenv("LOTBOOK_ANNOTATIONS_FILE", filepath.Join(dir, "annotations.jsonl"))
	t.Setenv("LOTBOOK_KENIN_EXCLUDE", "MARGIN_OPEN_BUY,MARGIN_CLOSE_SELL")
	*raw = true
	t.Cleanup(func() { *raw = false })
	return dir
}

// run parses args for c and executes it, returning what it printed.
func run(t *testing.T, c subcommands.Command, args ...string) (string, subcommands.ExitStatus) {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))

	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() { stdout = os.Stdout })
	status := c.Execute(context.Background(), f)
	return out.String(), status
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const twoBuys = `{"date":"2024-01-05","security":"7203","name":"Toyota","market":"DOMESTIC","account":"CASH","action":"CASH_BUY","quantity":100,"price":1000}
{"date":"2024-01-06","security":"7203","name":"Toyota","market":"DOMESTIC","account":"CASH","action":"CASH_BUY","quantity":100,"price":1200}
`

func TestImportAndPositions(t *testing.T) {
	dir := sandbox(t)
	in := writeFile(t, dir, "in.jsonl", twoBuys)

	out, status := run(t, &importCmd{}, in)
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Imported 2 records")

	out, status = run(t, &positionsCmd{}, "-json")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, `{"security":"7203","name":"Toyota","market":"DOMESTIC","lot":"CASH","quantity":200,"averageCost":1100,"totalCost":220000}`+"\n", out)

	// appending a sell that flattens, then a fresh buy.
	more := writeFile(t, dir, "more.jsonl", `{"date":"2024-01-07","security":"7203","account":"CASH","action":"CASH_SELL","quantity":200,"price":1500}
{"date":"2024-01-08","security":"7203","account":"CASH","action":"CASH_BUY","quantity":50,"price":2000}
`)
	out, status = run(t, &importCmd{}, more)
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "(4 total)")

	out, _ = run(t, &positionsCmd{}, "-json")
	assert.Contains(t, out, `"quantity":50,"averageCost":2000`)

	out, status = run(t, &importCmd{}, "-replace", in)
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "(2 total)")
}

func TestImport_Errors(t *testing.T) {
	dir := sandbox(t)
	_, status := run(t, &importCmd{})
	assert.Equal(t, subcommands.ExitUsageError, status)

	_, status = run(t, &importCmd{}, filepath.Join(dir, "missing.jsonl"))
	assert.Equal(t, subcommands.ExitFailure, status)

	bad := writeFile(t, dir, "bad.jsonl", twoBuys+"not json\n")
	_, status = run(t, &importCmd{}, bad)
	assert.Equal(t, subcommands.ExitFailure, status)
	_, err := os.Stat(filepath.Join(dir, "trades.jsonl"))
	assert.True(t, os.IsNotExist(err), "a failed import must not write the trade log")
}

func TestPositions_EmptyBook(t *testing.T) {
	sandbox(t)
	out, status := run(t, &positionsCmd{})
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "_No open position._")
}

func TestOverride(t *testing.T) {
	dir := sandbox(t)
	_, status := run(t, &importCmd{}, writeFile(t, dir, "in.jsonl", twoBuys))
	require.Equal(t, subcommands.ExitSuccess, status)

	out, status := run(t, &overrideCmd{}, "-security", "7203", "-q", "10", "-avg", "500")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "7203/CASH is now 10 @ 500")
	out, _ = run(t, &positionsCmd{}, "-json")
	assert.Contains(t, out, `"quantity":10,"averageCost":500`)

	out, _ = run(t, &positionsCmd{}, "-json", "-no-overrides")
	assert.Contains(t, out, `"quantity":200,"averageCost":1100`)

	_, status = run(t, &overrideCmd{}, "-security", "7203", "-q", "0")
	require.Equal(t, subcommands.ExitSuccess, status)
	out, _ = run(t, &positionsCmd{}, "-json")
	assert.Empty(t, out)

	_, status = run(t, &overrideCmd{}, "-security", "AAPL", "-q", "5", "-avg", "180", "-name", "Apple", "-market", "US")
	require.Equal(t, subcommands.ExitSuccess, status)
	out, _ = run(t, &positionsCmd{}, "-json")
	assert.Contains(t, out, `"security":"AAPL","name":"Apple","market":"FOREIGN"`)

	_, status = run(t, &overrideCmd{}, "-security", "7203", "-remove")
	require.Equal(t, subcommands.ExitSuccess, status)
	out, _ = run(t, &positionsCmd{}, "-json")
	assert.Contains(t, out, `"security":"7203","name":"Toyota","market":"DOMESTIC","lot":"CASH","quantity":200`)

	content, err := os.ReadFile(filepath.Join(dir, "overrides.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "\n"))
}

func TestOverride_UsageErrors(t *testing.T) {
	sandbox(t)
	tests := map[string][]string{
		"no security":   {"-q", "1"},
		"no quantity":   {"-security", "7203"},
		"bad quantity":  {"-security", "7203", "-q", "ten"},
		"bad lot":       {"-security", "7203", "-lot", "SHORT", "-q", "1"},
		"bad market":    {"-security", "7203", "-q", "1", "-market", "MOON"},
		"negative cost": {"-security", "7203", "-q", "1", "-avg", "-3"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, status := run(t, &overrideCmd{}, args...)
			assert.Equal(t, subcommands.ExitUsageError, status)
		})
	}
}

func TestAnnotate(t *testing.T) {
	dir := sandbox(t)
	_, status := run(t, &importCmd{}, writeFile(t, dir, "in.jsonl", twoBuys))
	require.Equal(t, subcommands.ExitSuccess, status)

	out, status := run(t, &annotateCmd{}, "-security", "7203", "entry_reason=breakout", "stop=950")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "7203/CASH has 2 notes\n", out)

	out, status = run(t, &annotateCmd{}, "-security", "7203")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "- **stop**: 950")

	out, _ = run(t, &positionsCmd{})
	assert.Contains(t, out, "| 7203 | Toyota | DOMESTIC | CASH | 200 | ¥1,100.00 | ¥220,000 | 2 |")

	out, _ = run(t, &annotateCmd{}, "-security", "7203", "stop=")
	assert.Equal(t, "7203/CASH has 1 notes\n", out)

	_, status = run(t, &annotateCmd{}, "-security", "7203", "novalue")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestParseNotes(t *testing.T) {
	notes, err := parseNotes([]string{"a=1", " b = two words ", "c="})
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"a", "1"}, {"b", "two words"}, {"c", ""}}, notes)

	_, err = parseNotes([]string{"=1"})
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	dir := sandbox(t)
	_, status := run(t, &importCmd{}, writeFile(t, dir, "in.jsonl", twoBuys))
	require.Equal(t, subcommands.ExitSuccess, status)

	out, status := run(t, &inspectCmd{}, "7203")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.True(t, strings.HasPrefix(out, "# 7203\n"), out)
	assert.Contains(t, out, "| CASH | CASH_BUY | 2 | 200 |")

	_, status = run(t, &inspectCmd{})
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestSize(t *testing.T) {
	sandbox(t)
	out, status := run(t, &sizeCmd{}, "-entry", "1000", "-stop", "950")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "| **Max shares** | **40** |")

	t.Setenv("LOTBOOK_TOTAL_CAPITAL", "500000")
	out, _ = run(t, &sizeCmd{}, "-entry", "1000", "-stop", "950", "-risk", "1")
	assert.Contains(t, out, "| **Max shares** | **100** |")

	out, _ = run(t, &sizeCmd{}, "-entry", "200", "-stop", "190", "-capital", "10000", "-risk", "1", "-market", "FOREIGN")
	assert.Contains(t, out, "| Risk amount | $100.00 |")

	_, status = run(t, &sizeCmd{}, "-entry", "1000", "-stop", "1000")
	assert.Equal(t, subcommands.ExitUsageError, status)
	_, status = run(t, &sizeCmd{}, "-entry", "abc", "-stop", "1")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestPrintMarkdownStyled(t *testing.T) {
	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() { stdout = os.Stdout })
	printMarkdown("# Positions\n\n_No open position._\n")
	assert.Contains(t, out.String(), "Positions")
	assert.Contains(t, out.String(), "No open position")
}

func TestPositions_AsOf(t *testing.T) {
	dir := sandbox(t)
	_, status := run(t, &importCmd{}, writeFile(t, dir, "in.jsonl", twoBuys))
	require.Equal(t, subcommands.ExitSuccess, status)
	_, status = run(t, &overrideCmd{}, "-security", "7203", "-q", "10", "-avg", "500")
	require.Equal(t, subcommands.ExitSuccess, status)

	out, status := run(t, &positionsCmd{}, "-json", "-as-of", "2024/01/05")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, `"quantity":100,"averageCost":1000`, "overrides do not apply to a past table")

	out, _ = run(t, &positionsCmd{}, "-json", "-as-of", "2024-01-04")
	assert.Empty(t, out)

	_, status = run(t, &positionsCmd{}, "-as-of", "yesterday")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestInspect_Window(t *testing.T) {
	dir := sandbox(t)
	_, status := run(t, &importCmd{}, writeFile(t, dir, "in.jsonl", twoBuys))
	require.Equal(t, subcommands.ExitSuccess, status)

	out, status := run(t, &inspectCmd{}, "-from", "2024-01-06", "7203")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "| CASH | CASH_BUY | 1 | 100 |")
	assert.NotContains(t, out, "2024-01-05")

	_, status = run(t, &inspectCmd{}, "-to", "someday", "7203")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestAnalyze(t *testing.T) {
	dir := sandbox(t)
	sells := twoBuys + `{"date":"2024-01-15","security":"7203","name":"Toyota","market":"DOMESTIC","account":"CASH","action":"CASH_SELL","quantity":50,"price":1300}
{"date":"2024-02-01","security":"7203","name":"Toyota","market":"DOMESTIC","account":"CASH","action":"CASH_SELL","quantity":50,"price":1000}
`
	_, status := run(t, &importCmd{}, writeFile(t, dir, "in.jsonl", sells))
	require.Equal(t, subcommands.ExitSuccess, status)
	_, status = run(t, &annotateCmd{}, "-security", "7203", "entry_reason=breakout")
	require.Equal(t, subcommands.ExitSuccess, status)

	out, status := run(t, &analyzeCmd{}, "-by", "entry_reason")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.True(t, strings.HasPrefix(out, "# Trade Analysis\n"), out)
	// 50 × (1300 − 1100) then 50 × (1000 − 1100)
	assert.Contains(t, out, "| JPY | 2 | 1 | 1 | 50.0% | ¥5,000 | ¥2,500 | ¥10,000 | -¥5,000 | 2.00 | 18.5 |")
	assert.Contains(t, out, "| breakout | JPY | 2 |")
	assert.Contains(t, out, "1 positions still open.")

	out, status = run(t, &analyzeCmd{}, "-from", "2024-02-01")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Trades exited within 2024-02-01..")
	assert.Contains(t, out, "| 2024-02-01 | 2024-01-05 | 7203 | Toyota | CASH | 50 | ¥1,100.00 | ¥1,000.00 | -¥5,000 | -9.09% | 27 | -¥5,000 |")
	assert.NotContains(t, out, "2024-01-15")

	_, status = run(t, &analyzeCmd{}, "-to", "someday")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestAnalyze_EmptyBook(t *testing.T) {
	sandbox(t)
	out, status := run(t, &analyzeCmd{})
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "_No closed trade._")
	assert.Contains(t, out, "0 positions still open.")
}
