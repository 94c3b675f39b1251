package market

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"orderly-client/internal/config"
	"orderly-client/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func futures(symbol, open, close, amount string) core.FuturesRow {
	return core.FuturesRow{Symbol: symbol, Open24h: dec(open), Close24h: dec(close), Amount24h: dec(amount)}
}

func symbols(rows []Ticker) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Symbol
	}
	return out
}

func TestChangePercent(t *testing.T) {
	require.True(t, ChangePercent(dec("100"), dec("105")).Equal(dec("5")))
	require.True(t, ChangePercent(dec("200"), dec("150")).Equal(dec("-25")))
	require.True(t, ChangePercent(decimal.Zero, dec("150")).IsZero())
	require.True(t, ChangePercent(dec("-1"), dec("150")).IsZero())
}

func TestFromFuturesUsesCloseAndQuoteAmount(t *testing.T) {
	row := futures("PERP_BTC_USDC", "60000", "63000", "75000000")
	row.Volume24h = dec("1200")
	tk := FromFutures(row)
	require.Equal(t, "PERP_BTC_USDC", tk.Symbol)
	require.True(t, tk.Price.Equal(dec("63000")))
	require.True(t, tk.ChangePct.Equal(dec("5")))
	require.True(t, tk.Volume.Equal(dec("75000000")))
}

func TestSortToggle(t *testing.T) {
	s := DefaultSort()
	require.Equal(t, Sort{Key: config.SortVolume, Order: config.OrderDesc}, s)
	s = s.Toggle(config.SortVolume)
	require.Equal(t, config.OrderAsc, s.Order)
	s = s.Toggle(config.SortVolume)
	require.Equal(t, config.OrderDesc, s.Order)
	s = s.Toggle(config.SortSymbol)
	require.Equal(t, Sort{Key: config.SortSymbol, Order: config.OrderDesc}, s)
}

func TestBoardViewSortsAndFilters(t *testing.T) {
	b := NewBoard(Sort{})
	b.Replace([]core.FuturesRow{
		futures("PERP_ETH_USDC", "2000", "2100", "500000"),
		futures("PERP_BTC_USDC", "60000", "57000", "900000"),
		futures("perp_sol_usdc", "100", "110", "100000"),
		futures("PERP_WIF_USDC", "0", "2", "100000"),
	})
	require.Equal(t, 4, b.Len())

	require.Equal(t, []string{"PERP_BTC_USDC", "PERP_ETH_USDC", "PERP_WIF_USDC", "perp_sol_usdc"}, symbols(b.View()))

	b.SetSort(Sort{Key: config.SortSymbol, Order: config.OrderAsc})
	require.Equal(t, []string{"PERP_BTC_USDC", "PERP_ETH_USDC", "perp_sol_usdc", "PERP_WIF_USDC"}, symbols(b.View()))

	require.Equal(t, Sort{Key: config.SortChange, Order: config.OrderDesc}, b.SortBy(config.SortChange))
	require.Equal(t, []string{"perp_sol_usdc", "PERP_ETH_USDC", "PERP_WIF_USDC", "PERP_BTC_USDC"}, symbols(b.View()))

	b.SortBy(config.SortPrice)
	b.SortBy(config.SortPrice)
	require.Equal(t, Sort{Key: config.SortPrice, Order: config.OrderAsc}, b.Sort())
	require.Equal(t, []string{"PERP_WIF_USDC", "perp_sol_usdc", "PERP_ETH_USDC", "PERP_BTC_USDC"}, symbols(b.View()))

	b.SetFilter(" Sol ")
	require.Equal(t, []string{"perp_sol_usdc"}, symbols(b.View()))
	b.SetFilter("")

	b.SetMinVolume(dec("400000"))
	require.ElementsMatch(t, []string{"PERP_ETH_USDC", "PERP_BTC_USDC"}, symbols(b.View()))
}

func TestBoardMergeUpsertsStreamTickers(t *testing.T) {
	b := NewBoard(DefaultSort())
	b.Replace([]core.FuturesRow{futures("PERP_ETH_USDC", "2000", "2100", "500000")})
	b.Merge([]core.StreamTicker{
		{Symbol: "PERP_ETH_USDC", Open: dec("2000"), Close: dec("1900"), Amount: dec("600000")},
		{Symbol: "PERP_BTC_USDC", Open: dec("60000"), Close: dec("60600"), Amount: dec("100")},
	})
	rows := b.View()
	require.Equal(t, []string{"PERP_ETH_USDC", "PERP_BTC_USDC"}, symbols(rows))
	require.True(t, rows[0].ChangePct.Equal(dec("-5")))
	require.True(t, rows[1].ChangePct.Equal(dec("1")))
}

func TestBoardConcurrentAccess(t *testing.T) {
	b := NewBoard(DefaultSort())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.Merge([]core.StreamTicker{{Symbol: "PERP_ETH_USDC", Open: dec("1"), Close: dec("2")}})
		}()
		go func() {
			defer wg.Done()
			_ = b.View()
		}()
	}
	wg.Wait()
	require.Equal(t, 1, b.Len())
}

func TestRender(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, []Ticker{
		FromFutures(futures("PERP_BTC_USDC", "60000", "63000", "75000000")),
		FromFutures(futures("PERP_ETH_USDC", "2000", "1990", "1500")),
	}))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "SYMBOL")
	require.Contains(t, lines[1], "$63,000.00")
	require.Contains(t, lines[1], "+5.00%")
	require.Contains(t, lines[1], "75M")
	require.Contains(t, lines[2], "-0.50%")
	require.Contains(t, lines[2], "1.5K")
}
