package lotbook

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computed() []Position {
	return []Position{
		{SecurityID: "1301", SecurityName: "Kyokuyo", Market: Domestic, Lot: CashLot, Quantity: 100, AverageCost: dec("3000")},
		{SecurityID: "7203", SecurityName: "Toyota", Market: Domestic, Lot: CashLot, Quantity: 200, AverageCost: dec("1100")},
		{SecurityID: "7203", SecurityName: "Toyota", Market: Domestic, Lot: MarginLot, Quantity: 300, AverageCost: dec("1150")},
	}
}

func TestMerge(t *testing.T) {
	us := Foreign
	tests := []struct {
		name      string
		overrides []ManualOverride
		want      []string // key=quantity@cost
	}{
		{
			name: "no override",
			want: []string{"1301/CASH=100@3000", "7203/CASH=200@1100", "7203/MARGIN=300@1150"},
		},
		{
			name:      "replace",
			overrides: []ManualOverride{{SecurityID: "7203", Lot: CashLot, Quantity: dec("150"), AverageCost: dec("1050.456")}},
			want:      []string{"1301/CASH=100@3000", "7203/CASH=150@1050.46", "7203/MARGIN=300@1150"},
		},
		{
			name:      "delete with zero",
			overrides: []ManualOverride{{SecurityID: "7203", Lot: MarginLot, Quantity: dec("0"), AverageCost: dec("1150")}},
			want:      []string{"1301/CASH=100@3000", "7203/CASH=200@1100"},
		},
		{
			name:      "delete with negative",
			overrides: []ManualOverride{{SecurityID: "1301", Lot: CashLot, Quantity: dec("-5")}},
			want:      []string{"7203/CASH=200@1100", "7203/MARGIN=300@1150"},
		},
		{
			name: "insert",
			overrides: []ManualOverride{
				{SecurityID: "AAPL", Lot: CashLot, SecurityName: "Apple", Market: &us, Quantity: dec("10"), AverageCost: dec("180.5")},
				{SecurityID: "0001", Lot: MarginLot, Quantity: dec("1"), AverageCost: dec("1")},
			},
			want: []string{"0001/MARGIN=1@1", "1301/CASH=100@3000", "7203/CASH=200@1100", "7203/MARGIN=300@1150", "AAPL/CASH=10@180.5"},
		},
		{
			name:      "deleting a missing key is a no-op",
			overrides: []ManualOverride{{SecurityID: "9984", Lot: CashLot}},
			want:      []string{"1301/CASH=100@3000", "7203/CASH=200@1100", "7203/MARGIN=300@1150"},
		},
		{
			name:      "override without security is ignored",
			overrides: []ManualOverride{{Lot: CashLot, Quantity: dec("10"), AverageCost: dec("1")}},
			want:      []string{"1301/CASH=100@3000", "7203/CASH=200@1100", "7203/MARGIN=300@1150"},
		},
		{
			name: "last override of a key wins",
			overrides: []ManualOverride{
				{SecurityID: "7203", Lot: CashLot, Quantity: dec("0")},
				{SecurityID: "7203", Lot: CashLot, Quantity: dec("50"), AverageCost: dec("999")},
			},
			want: []string{"1301/CASH=100@3000", "7203/CASH=50@999", "7203/MARGIN=300@1150"},
		},
		{
			name:      "quantity rounding to zero deletes",
			overrides: []ManualOverride{{SecurityID: "7203", Lot: CashLot, Quantity: dec("0.3"), AverageCost: dec("1")}},
			want:      []string{"1301/CASH=100@3000", "7203/MARGIN=300@1150"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range Merge(computed(), tt.overrides) {
				got = append(got, p.Key().String()+"="+D(p.Quantity).String()+"@"+p.AverageCost.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMerge_InsertedIdentity(t *testing.T) {
	us := Foreign
	got := Merge(nil, []ManualOverride{
		{SecurityID: "AAPL", Lot: CashLot, SecurityName: "Apple", Market: &us, Quantity: dec("10"), AverageCost: dec("180")},
		{SecurityID: "6758", Lot: CashLot, Quantity: dec("100"), AverageCost: dec("2500")},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "6758", got[0].SecurityName, "name falls back to the id")
	assert.Equal(t, Domestic, got[0].Market, "market falls back to domestic")
	assert.Equal(t, "Apple", got[1].SecurityName)
	assert.Equal(t, Foreign, got[1].Market)
	equalDec(t, "1800", got[1].TotalCost())
}

func TestMerge_ReplaceKeepsIdentity(t *testing.T) {
	got := Merge(computed(), []ManualOverride{{SecurityID: "7203", Lot: CashLot, SecurityName: "ignored", Quantity: dec("10"), AverageCost: dec("1000")}})
	require.Len(t, got, 3)
	assert.Equal(t, "Toyota", got[1].SecurityName)
	equalDec(t, "10000", got[1].TotalCost())
}

func TestMerge_OverrideSupremacy(t *testing.T) {
	// whatever the engine computed, a non positive override removes the key.
	records := []TradeRecord{
		buy("2024-01-05", "7203", 1_000_000, 1000),
		open("2024-01-05", "7203", 500, 900),
	}
	positions := Summarize(records)
	require.Len(t, positions, 2)
	for _, p := range positions {
		merged := Merge(positions, []ManualOverride{{SecurityID: p.SecurityID, Lot: p.Lot, Quantity: dec("0")}})
		assert.False(t, slices.ContainsFunc(merged, func(m Position) bool { return m.Key() == p.Key() }), "%s survived", p.Key())
		assert.Len(t, merged, 1)
	}
}

func TestMerge_DoesNotModifyInput(t *testing.T) {
	positions := computed()
	before := slices.Clone(positions)
	Merge(positions, []ManualOverride{
		{SecurityID: "1301", Lot: CashLot},
		{SecurityID: "7203", Lot: CashLot, Quantity: dec("1"), AverageCost: dec("1")},
	})
	assert.Equal(t, before, positions)
}

func TestUpsertOverride(t *testing.T) {
	var overrides []ManualOverride
	overrides = UpsertOverride(overrides, ManualOverride{SecurityID: "7203", Lot: CashLot, Quantity: dec("1")})
	overrides = UpsertOverride(overrides, ManualOverride{SecurityID: "7203", Lot: MarginLot, Quantity: dec("2")})
	overrides = UpsertOverride(overrides, ManualOverride{SecurityID: "7203", Lot: CashLot, Quantity: dec("3")})
	require.Len(t, overrides, 2)
	equalDec(t, "3", overrides[0].Quantity)
	equalDec(t, "2", overrides[1].Quantity)
}

func TestRemoveOverride(t *testing.T) {
	overrides := []ManualOverride{
		{SecurityID: "7203", Lot: CashLot, Quantity: dec("1")},
		{SecurityID: "7203", Lot: MarginLot, Quantity: dec("2")},
		{SecurityID: "7203", Lot: CashLot, Quantity: dec("3")},
	}
	overrides = RemoveOverride(overrides, LotKey{SecurityID: "7203", Lot: CashLot})
	require.Len(t, overrides, 1)
	assert.Equal(t, MarginLot, overrides[0].Lot)
	assert.Len(t, RemoveOverride(overrides, LotKey{SecurityID: "1301"}), 1)
}
