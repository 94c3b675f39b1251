// Package display formats decimals for terminal tables.
package display

import (
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

const Placeholder = "-"

var compactSuffix = map[string]string{
	"k": "K",
	"M": "M",
	"G": "B",
	"T": "T",
	"P": "P",
}

// NewTable returns a tab-aligned writer; callers must Flush it.
func NewTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

// Number renders d with thousands separators and exactly digits decimals.
func Number(d decimal.Decimal, digits int) string {
	format := "#,###."
	if digits > 0 {
		format += strings.Repeat("#", digits)
	}
	return humanize.FormatFloat(format, d.InexactFloat64())
}

// USD renders two decimals, or six for sub-dollar amounts.
func USD(d decimal.Decimal) string {
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
		d = d.Neg()
	}
	if !d.IsZero() && d.LessThan(decimal.NewFromInt(1)) {
		return sign + "$" + d.Round(6).String()
	}
	return sign + "$" + Number(d, 2)
}

func NullUSD(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	return USD(d.Decimal)
}

// Compact renders large values as 1.5K, 2.3M, 4.1B.
func Compact(d decimal.Decimal) string {
	f := d.InexactFloat64()
	if math.Abs(f) < 1000 {
		return humanize.FtoaWithDigits(f, 1)
	}
	value, prefix := humanize.ComputeSI(f)
	suffix, ok := compactSuffix[prefix]
	if !ok {
		return humanize.FtoaWithDigits(f, 1)
	}
	return humanize.FtoaWithDigits(value, 1) + suffix
}

// Percent renders a signed two-decimal percentage, e.g. +5.00%.
func Percent(d decimal.Decimal) string {
	s := d.StringFixed(2) + "%"
	if d.Sign() >= 0 {
		s = "+" + s
	}
	return s
}

// BySign colors text green for non-negative d and red otherwise.
func BySign(d decimal.Decimal, text string) string {
	if d.Sign() >= 0 {
		return color.GreenString("%s", text)
	}
	return color.RedString("%s", text)
}
