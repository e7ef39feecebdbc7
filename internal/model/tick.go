// Package model price tick model
package model

import "time"

// PriceTick one normalized price observation, consumed once and never stored
type PriceTick struct {
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observedAt"`
}
