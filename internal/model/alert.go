// Package model alert model
package model

// Alert payload sent by TradingView on a triggered alert
type Alert struct {
	Signal     Signal   `json:"signal"`
	Pair       string   `json:"pair"`
	Price      float64  `json:"price"`
	Name       string   `json:"name"`
	TakeProfit *float64 `json:"takeProfit,omitempty"`
	StopLoss   *float64 `json:"stopLoss,omitempty"`
	Secret     string   `json:"secret"`
}
