package portfolio

import (
	"fmt"
	"io"

	"orderly-client/internal/core"
	"orderly-client/internal/display"
)

// Render writes the summary, holdings and open positions sections.
func Render(w io.Writer, snap core.AccountSnapshot) error {
	if err := RenderSummary(w, Summarize(snap)); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := RenderHoldings(w, snap.Holdings.Holding); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return RenderPositions(w, snap.Positions.Rows)
}

func RenderSummary(w io.Writer, s Summary) error {
	margin := display.Placeholder
	if s.MarginRatio.Valid {
		margin = display.Number(s.MarginRatio.Decimal, 2) + "%"
	}
	tw := display.NewTable(w)
	fmt.Fprintf(tw, "Total Collateral\t%s\t\n", display.USD(s.TotalCollateral))
	fmt.Fprintf(tw, "Free Collateral\t%s\t\n", display.USD(s.FreeCollateral))
	fmt.Fprintf(tw, "Margin Ratio\t%s\t\n", margin)
	fmt.Fprintf(tw, "Unrealized PnL\t%s\t\n", display.BySign(s.UnrealizedPnL, display.USD(s.UnrealizedPnL)))
	return tw.Flush()
}

func RenderHoldings(w io.Writer, holdings []core.Holding) error {
	if len(holdings) == 0 {
		_, err := fmt.Fprintln(w, "No assets found")
		return err
	}
	tw := display.NewTable(w)
	fmt.Fprintln(tw, "TOKEN\tHOLDING\tFROZEN\tPENDING SHORT\t")
	for _, h := range SortedHoldings(holdings) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			h.Token,
			display.Number(h.Holding, 6),
			display.Number(h.Frozen, 6),
			display.Number(h.PendingShort, 6),
		)
	}
	return tw.Flush()
}

func RenderPositions(w io.Writer, rows []core.Position) error {
	open := OpenPositions(rows)
	if len(open) == 0 {
		_, err := fmt.Fprintln(w, "No open positions")
		return err
	}
	tw := display.NewTable(w)
	fmt.Fprintln(tw, "SYMBOL\tSIZE\tENTRY\tMARK\tUNREALIZED PNL\tEST. LIQ\tLEVERAGE\t")
	for _, p := range open {
		size := display.Number(p.PositionQty, 4)
		if p.IsLong() {
			size = "+" + size
		}
		leverage := display.Placeholder + "x"
		if p.Leverage.Valid && !p.Leverage.Decimal.IsZero() {
			leverage = p.Leverage.Decimal.String() + "x"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			p.Symbol,
			display.BySign(p.PositionQty, size),
			display.USD(p.AverageOpenPrice),
			display.USD(p.MarkPrice),
			display.BySign(p.UnrealizedPnL, display.USD(p.UnrealizedPnL)),
			display.NullUSD(p.EstLiqPrice),
			leverage,
		)
	}
	return tw.Flush()
}
