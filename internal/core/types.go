package core

import (
	"github.com/shopspring/decimal"
)

type Network string

const (
	Testnet Network = "testnet"
	Mainnet Network = "mainnet"
)

// Holding is one token balance from /v1/client/holding.
type Holding struct {
	Token        string          `json:"token"`
	Holding      decimal.Decimal `json:"holding"`
	Frozen       decimal.Decimal `json:"frozen"`
	PendingShort decimal.Decimal `json:"pending_short"`
	// UpdatedTime is unix milliseconds.
	UpdatedTime  int64           `json:"updated_time"`
}

type HoldingsInfo struct {
	Holding []Holding `json:"holding"`
}

// Position is one row of /v1/positions.
type Position struct {
	Symbol           string              `json:"symbol"`
	PositionQty      decimal.Decimal     `json:"position_qty"`
	AverageOpenPrice decimal.Decimal     `json:"average_open_price"`
	MarkPrice        decimal.Decimal     `json:"mark_price"`
	UnrealizedPnL    decimal.Decimal     `json:"unrealized_pnl"`
	EstLiqPrice      decimal.NullDecimal `json:"est_liq_price"`
	Leverage         decimal.NullDecimal `json:"leverage"`
}

func (p Position) IsLong() bool { return p.PositionQty.Sign() > 0 }

func (p Position) IsOpen() bool { return !p.PositionQty.IsZero() }

// PositionsInfo is the account level payload of /v1/positions.
type PositionsInfo struct {
	TotalCollateralValue decimal.Decimal     `json:"total_collateral_value"`
	FreeCollateral       decimal.Decimal     `json:"free_collateral"`
	MarginRatio          decimal.NullDecimal `json:"margin_ratio"`
	TotalUnrealPnL       decimal.Decimal     `json:"total_unreal_pnl"`
	Rows                 []Position          `json:"rows"`
}

// AccountSnapshot pairs holdings and positions fetched for the same account.
type AccountSnapshot struct {
	Holdings  HoldingsInfo
	Positions PositionsInfo
}

// FuturesRow is one market of /v1/public/futures.
type FuturesRow struct {
	Symbol         string          `json:"symbol"`
	IndexPrice     decimal.Decimal `json:"index_price"`
	MarkPrice      decimal.Decimal `json:"mark_price"`
	EstFundingRate decimal.Decimal `json:"est_funding_rate"`
	OpenInterest   decimal.Decimal `json:"open_interest"`
	Open24h        decimal.Decimal `json:"24h_open"`
	Close24h       decimal.Decimal `json:"24h_close"`
	High24h        decimal.Decimal `json:"24h_high"`
	Low24h         decimal.Decimal `json:"24h_low"`
	Volume24h      decimal.Decimal `json:"24h_volume"`
	Amount24h      decimal.Decimal `json:"24h_amount"`
}

type FuturesInfo struct {
	Rows []FuturesRow `json:"rows"`
}

// StreamTicker is one entry of the websocket "tickers" topic.
type StreamTicker struct {
	Symbol string          `json:"symbol"`
	Open   decimal.Decimal `json:"open"`
	Close  decimal.Decimal `json:"close"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Volume decimal.Decimal `json:"volume"`
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}
