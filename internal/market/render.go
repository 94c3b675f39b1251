package market

import (
	"fmt"
	"io"

	"orderly-client/internal/display"
)

// Render writes rows as an aligned table with a header line.
func Render(w io.Writer, rows []Ticker) error {
	tw := display.NewTable(w)
	fmt.Fprintln(tw, "SYMBOL\tPRICE\t24H CHANGE\t24H VOLUME\t")
	for _, t := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			t.Symbol,
			display.USD(t.Price),
			display.BySign(t.ChangePct, display.Percent(t.ChangePct)),
			display.Compact(t.Volume),
		)
	}
	return tw.Flush()
}
