// Package service trigger evaluation
package service

import (
	"Paper-Trading-Service/internal/model"
)

// Trigger a position due for closure and the condition that fired
type Trigger struct {
	Position model.Position
	Reason   model.CloseReason
}

// Evaluate decides closure for every given position against a price.
// Positions are snapshot copies, evaluation never blocks or mutates.
func Evaluate(positions []model.Position, price float64) []Trigger {
	var triggers []Trigger
	for _, position := range positions {
		if reason, hit := evaluate(&position, price); hit {
			triggers = append(triggers, Trigger{Position: position, Reason: reason})
		}
	}
	return triggers
}

// evaluate direction-aware comparisons, liquidation takes precedence over
// stop-loss, stop-loss over take-profit
func evaluate(position *model.Position, price float64) (model.CloseReason, bool) {
	if position.Direction == model.Long {
		switch {
		case price <= position.LiquidationPrice:
			return model.Liquidation, true
		case position.StopLoss != nil && price <= *position.StopLoss:
			return model.StopLoss, true
		case position.TakeProfit != nil && price >= *position.TakeProfit:
			return model.TakeProfit, true
		}
		return "", false
	}

	switch {
	case price >= position.LiquidationPrice:
		return model.Liquidation, true
	case position.StopLoss != nil && price >= *position.StopLoss:
		return model.StopLoss, true
	case position.TakeProfit != nil && price <= *position.TakeProfit:
		return model.TakeProfit, true
	}
	return "", false
}
