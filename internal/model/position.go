// Package model position models
package model

import (
	"strings"
	"time"
)

// Direction of a position
type Direction string

// position directions
const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Signal from an inbound alert
type Signal string

// alert signals
const (
	Buy  Signal = "buy"
	Sell Signal = "sell"
)

// Kind of a position
type Kind string

// position kinds, this service only opens paper trades
const (
	Paper Kind = "paper"
	Live  Kind = "live"
)

// CloseReason why a position was closed
type CloseReason string

// close reasons
const (
	Liquidation CloseReason = "liquidation"
	StopLoss    CloseReason = "stopLoss"
	TakeProfit  CloseReason = "takeProfit"
	Reversal    CloseReason = "reversal"
)

// DirectionFromSignal Buy->Long, Sell->Short, the only bridge between signal and position vocabulary
func DirectionFromSignal(s Signal) Direction {
	if s == Buy {
		return Long
	}
	return Short
}

// Position open simulated trade
type Position struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Pair             string    `json:"pair"`
	Direction        Direction `json:"direction"`
	Kind             Kind      `json:"kind"`
	Quantity         float64   `json:"quantity"`
	EntryPrice       float64   `json:"entryPrice"`
	Leverage         float64   `json:"leverage"`
	LiquidationPrice float64   `json:"liquidationPrice"`
	TakeProfit       *float64  `json:"takeProfit,omitempty"`
	StopLoss         *float64  `json:"stopLoss,omitempty"`
	OpenedAt         time.Time `json:"openedAt"`
}

// IdempotencyKey at most one open position may exist per key
func (p *Position) IdempotencyKey() string {
	return IdempotencyKey(p.Name, p.Pair, p.Kind)
}

// IdempotencyKey builds the (alert name, pair, kind) key
func IdempotencyKey(name, pair string, kind Kind) string {
	return name + "|" + pair + "|" + string(kind)
}

// ClosedPosition settled trade, immutable once created
type ClosedPosition struct {
	Position
	ExitPrice     float64     `json:"exitPrice"`
	ClosedAt      time.Time   `json:"closedAt"`
	PNL           float64     `json:"pnl"`
	ROE           float64     `json:"roe"`
	ExecutionFees float64     `json:"executionFees"`
	FundingFees   float64     `json:"fundingFees"`
	Reason        CloseReason `json:"reason"`
}

// NormalizeSymbol uppercases and strips pair separators so that alert pairs,
// exchange product ids and position pairs compare equal by ==
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', '/':
			return -1
		}
		return r
	}, s)
}
