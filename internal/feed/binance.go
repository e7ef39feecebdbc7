// Package feed binance adapter
package feed

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"Paper-Trading-Service/internal/model"

	"github.com/gorilla/websocket"
)

const binanceURL = "wss://stream.binance.com:9443/ws"

// binanceTicker 24hrTicker stream event, only the fields this service reads
type binanceTicker struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	LastPrice string `json:"c"`
}

// Binance 24hrTicker stream adapter
type Binance struct {
	symbols []string
}

// NewBinance constructor, symbols are the configured pairs (e.g. "SOL-USDT")
func NewBinance(symbols []string) *Binance {
	return &Binance{symbols: symbols}
}

// ID adapter identifier
func (b *Binance) ID() string { return "binance" }

// URL stream endpoint
func (b *Binance) URL() string { return binanceURL }

// Subscribe sends the SUBSCRIBE frame for every configured symbol
func (b *Binance) Subscribe(conn *websocket.Conn) error {
	params := make([]string, 0, len(b.symbols))
	for _, symbol := range b.symbols {
		params = append(params, strings.ToLower(model.NormalizeSymbol(symbol))+"@ticker")
	}

	message, err := json.Marshal(map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": params,
		"id":     1,
	})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, message)
}

// OnMessage parses one raw frame, everything that is not a well-formed
// 24hrTicker event with a positive price is dropped
func (b *Binance) OnMessage(raw []byte) (model.PriceTick, bool) {
	var ticker binanceTicker
	if err := json.Unmarshal(raw, &ticker); err != nil || ticker.EventType != "24hrTicker" {
		return model.PriceTick{}, false
	}

	price, err := strconv.ParseFloat(ticker.LastPrice, 64)
	if err != nil || price <= 0 || math.IsInf(price, 0) {
		return model.PriceTick{}, false
	}

	observedAt := time.Now().UTC()
	if ticker.EventTime > 0 {
		observedAt = time.UnixMilli(ticker.EventTime).UTC()
	}

	return model.PriceTick{
		Symbol:     model.NormalizeSymbol(ticker.Symbol),
		Price:      price,
		ObservedAt: observedAt,
	}, true
}
