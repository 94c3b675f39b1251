package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Decimal is a YAML scalar parsed without going through float64. A trailing K, M
// or B scales the value, so volume thresholds can be written as "2.5M".
type Decimal struct {
	decimal.Decimal
}

var compactSuffixes = map[byte]int32{'K': 3, 'M': 6, 'B': 9}

func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	var exp int32
	if e, ok := compactSuffixes[s[len(s)-1]&^0x20]; ok {
		exp = e
		s = strings.TrimSpace(s[:len(s)-1])
	}
	dec, err := decimal.NewFromString(strings.ReplaceAll(s, "_", ""))
	if err != nil {
		return decimal.Zero, err
	}
	return dec.Shift(exp), nil
}

func (d *Decimal) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("decimal must be a scalar")
	}
	dec, err := ParseDecimal(value.Value)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", value.Value, err)
	}
	d.Decimal = dec
	return nil
}

func (d Decimal) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
