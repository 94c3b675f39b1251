// Package portfolio builds the account views shown by the account command.
package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"orderly-client/internal/core"
)

type Summary struct {
	TotalCollateral decimal.Decimal
	FreeCollateral  decimal.Decimal
	MarginRatio     decimal.NullDecimal
	UnrealizedPnL   decimal.Decimal
	Holdings        int
	OpenPositions   int
}

func Summarize(snap core.AccountSnapshot) Summary {
	return Summary{
		TotalCollateral: snap.Positions.TotalCollateralValue,
		FreeCollateral:  snap.Positions.FreeCollateral,
		MarginRatio:     snap.Positions.MarginRatio,
		UnrealizedPnL:   snap.Positions.TotalUnrealPnL,
		Holdings:        len(snap.Holdings.Holding),
		OpenPositions:   len(OpenPositions(snap.Positions.Rows)),
	}
}

// SortedHoldings returns a copy ordered by holding, largest first.
func SortedHoldings(holdings []core.Holding) []core.Holding {
	out := append([]core.Holding(nil), holdings...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Holding.GreaterThan(out[j].Holding)
	})
	return out
}

// OpenPositions drops rows with a zero quantity.
func OpenPositions(rows []core.Position) []core.Position {
	out := make([]core.Position, 0, len(rows))
	for _, p := range rows {
		if p.IsOpen() {
			out = append(out, p)
		}
	}
	return out
}
