package lotbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdown(t *testing.T) {
	records := []TradeRecord{
		buy("2024-01-07", "7203", 100, 1000),
		open("2024-01-05", "7203", 300, 1100),
		buy("2024-01-06", "9984", 10, 5000),
		kenin("2024-01-10", "7203", 100, 0),
		buy("2024-01-08", "7203", 50, 1300),
	}
	b := NewSummarizer().Breakdown(records, "7203")

	assert.Equal(t, "7203", b.SecurityID)
	require.Len(t, b.Records, 4)
	assert.Equal(t, "2024-01-05", b.Records[0].TradeDate.String(), "records are chronological")
	assert.Equal(t, "2024-01-10", b.Records[3].TradeDate.String())

	require.Len(t, b.Lines, 3)
	assert.Equal(t, BreakdownLine{AccountType: CashAccount, Action: CashBuy, Count: 2, Quantity: b.Lines[0].Quantity}, b.Lines[0])
	equalDec(t, "150", b.Lines[0].Quantity)
	assert.Equal(t, MarginAccount, b.Lines[1].AccountType)
	assert.Equal(t, Kenin, b.Lines[2].AccountType)
	equalDec(t, "100", b.Lines[2].Quantity)

	require.Len(t, b.Positions, 2)
	assert.Equal(t, int64(250), b.Positions[0].Quantity)
	assert.Equal(t, int64(200), b.Positions[1].Quantity)
}

func TestBreakdown_UnknownSecurity(t *testing.T) {
	b := NewSummarizer().Breakdown([]TradeRecord{buy("2024-01-07", "7203", 100, 1000)}, "0000")
	assert.Empty(t, b.Records)
	assert.Empty(t, b.Lines)
	assert.Empty(t, b.Positions)
}
