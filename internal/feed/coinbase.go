// Package feed coinbase adapter
package feed

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"Paper-Trading-Service/internal/model"

	"github.com/gorilla/websocket"
)

const coinbaseURL = "wss://ws-feed.exchange.coinbase.com"

// coinbaseTicker ticker channel message, only the fields this service reads
type coinbaseTicker struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Time      string `json:"time"`
}

// Coinbase ticker channel adapter
type Coinbase struct {
	products []string
}

// NewCoinbase constructor, products are coinbase product ids (e.g. "BTC-USD")
func NewCoinbase(products []string) *Coinbase {
	return &Coinbase{products: products}
}

// ID adapter identifier
func (c *Coinbase) ID() string { return "coinbase" }

// URL feed endpoint
func (c *Coinbase) URL() string { return coinbaseURL }

// Subscribe subscribes the ticker channel for every configured product
func (c *Coinbase) Subscribe(conn *websocket.Conn) error {
	message, err := json.Marshal(map[string]interface{}{
		"type":        "subscribe",
		"product_ids": c.products,
		"channels":    []string{"ticker"},
	})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, message)
}

// OnMessage parses one raw frame, control messages ("subscriptions",
// heartbeats) and malformed payloads are dropped
func (c *Coinbase) OnMessage(raw []byte) (model.PriceTick, bool) {
	var ticker coinbaseTicker
	if err := json.Unmarshal(raw, &ticker); err != nil || ticker.Type != "ticker" {
		return model.PriceTick{}, false
	}

	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil || price <= 0 || math.IsInf(price, 0) {
		return model.PriceTick{}, false
	}

	observedAt := time.Now().UTC()
	if parsed, parseErr := time.Parse(time.RFC3339, ticker.Time); parseErr == nil {
		observedAt = parsed.UTC()
	}

	return model.PriceTick{
		Symbol:     model.NormalizeSymbol(ticker.ProductID),
		Price:      price,
		ObservedAt: observedAt,
	}, true
}
