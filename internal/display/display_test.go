package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNumberAndUSD(t *testing.T) {
	require.Equal(t, "1,234.567800", Number(d("1234.5678"), 6))
	require.Equal(t, "1,235", Number(d("1234.5678"), 0))
	require.Equal(t, "$64,010.50", USD(d("64010.5")))
	require.Equal(t, "-$12.25", USD(d("-12.25")))
	require.Equal(t, "$0.00", USD(decimal.Zero))
	require.Equal(t, "$0.000123", USD(d("0.0001234")))
	require.Equal(t, Placeholder, NullUSD(decimal.NullDecimal{}))
	require.Equal(t, "$5.00", NullUSD(decimal.NewNullDecimal(d("5"))))
}

func TestCompact(t *testing.T) {
	require.Equal(t, "950", Compact(d("950")))
	require.Equal(t, "1.5K", Compact(d("1500")))
	require.Equal(t, "200K", Compact(d("200000")))
	require.Equal(t, "75M", Compact(d("75000000")))
	require.Equal(t, "1.2B", Compact(d("1234000000")))
	require.Equal(t, "0", Compact(decimal.Zero))
}

func TestPercentAndColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	require.Equal(t, "+5.00%", Percent(d("5")))
	require.Equal(t, "+0.00%", Percent(decimal.Zero))
	require.Equal(t, "-1.24%", Percent(d("-1.2351")))
	require.Equal(t, "x", BySign(d("-1"), "x"))
}

func TestNewTableAligns(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTable(&buf)
	_, _ = tw.Write([]byte("A\tBBB\t\nCCCC\tD\t\n"))
	require.NoError(t, tw.Flush())
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, len(lines[0]), len(lines[1]))
	require.True(t, strings.HasSuffix(lines[0], "  BBB"))
	require.True(t, strings.HasSuffix(lines[1], "    D"))
}
