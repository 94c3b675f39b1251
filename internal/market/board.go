// Package market turns futures statistics into a filterable, sortable ticker board.
package market

import (
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"orderly-client/internal/config"
	"orderly-client/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Ticker is one board row. Volume is the 24h quote amount.
type Ticker struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	ChangePct decimal.Decimal `json:"change_pct"`
	Volume    decimal.Decimal `json:"volume"`
}

// ChangePercent is (close-open)/open*100, or zero when open is not positive.
func ChangePercent(open, close decimal.Decimal) decimal.Decimal {
	if open.Sign() <= 0 {
		return decimal.Zero
	}
	return close.Sub(open).Div(open).Mul(hundred)
}

func FromFutures(row core.FuturesRow) Ticker {
	return Ticker{
		Symbol:    row.Symbol,
		Price:     row.Close24h,
		ChangePct: ChangePercent(row.Open24h, row.Close24h),
		Volume:    row.Amount24h,
	}
}

func FromStream(t core.StreamTicker) Ticker {
	return Ticker{
		Symbol:    t.Symbol,
		Price:     t.Close,
		ChangePct: ChangePercent(t.Open, t.Close),
		Volume:    t.Amount,
	}
}

type Sort struct {
	Key   config.SortKey
	Order config.SortOrder
}

func DefaultSort() Sort {
	return Sort{Key: config.SortVolume, Order: config.OrderDesc}
}

// Toggle selects key: the active key flips direction, a new key starts descending.
func (s Sort) Toggle(key config.SortKey) Sort {
	if s.Key == key {
		if s.Order == config.OrderAsc {
			return Sort{Key: key, Order: config.OrderDesc}
		}
		return Sort{Key: key, Order: config.OrderAsc}
	}
	return Sort{Key: key, Order: config.OrderDesc}
}

// Board holds the latest tickers keyed by symbol. It is safe for concurrent use.
type Board struct {
	mu        sync.RWMutex
	tickers   map[string]Ticker
	sort      Sort
	filter    string
	minVolume decimal.Decimal
}

func NewBoard(s Sort) *Board {
	if s.Key == "" {
		s = DefaultSort()
	}
	if s.Order == "" {
		s.Order = config.OrderDesc
	}
	return &Board{tickers: make(map[string]Ticker), sort: s}
}

// Replace swaps in a full futures snapshot.
func (b *Board) Replace(rows []core.FuturesRow) {
	next := make(map[string]Ticker, len(rows))
	for _, row := range rows {
		next[row.Symbol] = FromFutures(row)
	}
	b.mu.Lock()
	b.tickers = next
	b.mu.Unlock()
}

// Merge upserts streamed tickers, keeping symbols absent from the batch.
func (b *Board) Merge(batch []core.StreamTicker) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range batch {
		b.tickers[t.Symbol] = FromStream(t)
	}
}

func (b *Board) SetFilter(query string) {
	b.mu.Lock()
	b.filter = strings.ToLower(strings.TrimSpace(query))
	b.mu.Unlock()
}

func (b *Board) SetMinVolume(v decimal.Decimal) {
	b.mu.Lock()
	b.minVolume = v
	b.mu.Unlock()
}

func (b *Board) SetSort(s Sort) {
	b.mu.Lock()
	b.sort = s
	b.mu.Unlock()
}

func (b *Board) SortBy(key config.SortKey) Sort {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sort = b.sort.Toggle(key)
	return b.sort
}

func (b *Board) Sort() Sort {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sort
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tickers)
}

// View returns the filtered rows in board order.
func (b *Board) View() []Ticker {
	b.mu.RLock()
	rows := make([]Ticker, 0, len(b.tickers))
	for _, t := range b.tickers {
		if b.filter != "" && !strings.Contains(strings.ToLower(t.Symbol), b.filter) {
			continue
		}
		if b.minVolume.Sign() > 0 && t.Volume.LessThan(b.minVolume) {
			continue
		}
		rows = append(rows, t)
	}
	s := b.sort
	b.mu.RUnlock()

	SortTickers(rows, s)
	return rows
}

// SortTickers orders rows in place. Symbols compare case-insensitively; ties fall
// back to ascending symbol so output is stable across refreshes.
func SortTickers(rows []Ticker, s Sort) {
	desc := s.Order == config.OrderDesc
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(rows[i], rows[j], s.Key)
		if c == 0 {
			return rows[i].Symbol < rows[j].Symbol
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b Ticker, key config.SortKey) int {
	switch key {
	case config.SortSymbol:
		return strings.Compare(strings.ToLower(a.Symbol), strings.ToLower(b.Symbol))
	case config.SortPrice:
		return a.Price.Cmp(b.Price)
	case config.SortChange:
		return a.ChangePct.Cmp(b.ChangePct)
	default:
		return a.Volume.Cmp(b.Volume)
	}
}
