// Package service trading
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"Paper-Trading-Service/internal/calc"
	"Paper-Trading-Service/internal/model"
	"Paper-Trading-Service/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// quantity is rounded to a fixed fractional precision
const quantityPrecision = 100

// PositionsRepository persistent store, the system of record
//
//go:generate mockery --name=PositionsRepository --case=underscore --output=./mocks
type PositionsRepository interface {
	InsertActive(ctx context.Context, position *model.Position) error
	DeleteActive(ctx context.Context, id string) error
	InsertClosed(ctx context.Context, position *model.ClosedPosition) error
	FindActiveByIdempotencyKey(ctx context.Context, name, pair string, kind model.Kind) (*model.Position, error)
	ListActive(ctx context.Context, filter repository.ActiveFilter, page, pageSize int) ([]*model.Position, error)
}

// Transactor runs a close's insertClosed and deleteActive as one transaction
//
//go:generate mockery --name=Transactor --case=underscore --output=./mocks
type Transactor interface {
	WithinTransaction(ctx context.Context, txFn repository.TxFunc) error
}

// Defaults configured paper-trade parameters
type Defaults struct {
	NotionalValue     float64
	Leverage          float64
	TakeProfitPercent float64 // 0 leaves the take-profit unset
	StopLossPercent   float64 // 0 leaves the stop-loss unset
	PersistTimeout    time.Duration
}

// OpenStatus outcome of an alert-driven open
type OpenStatus string

// open outcomes
const (
	// StatusOpened a new position was opened
	StatusOpened OpenStatus = "opened"
	// StatusIgnored an open position with the same key and direction already exists
	StatusIgnored OpenStatus = "ignored"
	// StatusReversed the existing opposite position was closed and a new one opened
	StatusReversed OpenStatus = "reversed"
)

// OpenResult outcome of OpenFromAlert
type OpenResult struct {
	Status   OpenStatus
	Position *model.Position
	Closed   *model.ClosedPosition
}

// Trading lifecycle manager. The only writer of the registry and of the
// store's active/closed collections. A single transition mutex serializes
// every open and close so that an alert-open and a tick-close for the same
// position can never interleave.
type Trading struct {
	mu         sync.Mutex
	registry   *repository.Registry
	positions  PositionsRepository
	transactor Transactor
	calculator *calc.Calculator
	defaults   Defaults
}

// NewTrading constructor
func NewTrading(registry *repository.Registry, positions PositionsRepository, transactor Transactor,
	calculator *calc.Calculator, defaults Defaults,
) *Trading {
	if defaults.PersistTimeout <= 0 {
		defaults.PersistTimeout = 5 * time.Second
	}
	return &Trading{
		registry:   registry,
		positions:  positions,
		transactor: transactor,
		calculator: calculator,
		defaults:   defaults,
	}
}

// LoadActivePositions rebuilds the registry from the store. Must complete
// before any tick or alert is accepted, an empty or partial registry risks
// missed triggers, so callers treat an error as fatal.
func (t *Trading) LoadActivePositions(ctx context.Context) error {
	for page := 1; ; page++ {
		positions, err := t.positions.ListActive(ctx, repository.ActiveFilter{}, page, repository.MaxPageSize)
		if err != nil {
			return fmt.Errorf("trading - LoadActivePositions - ListActive: %w", err)
		}
		for _, position := range positions {
			if err = t.registry.Insert(position); err != nil {
				return fmt.Errorf("trading - LoadActivePositions - Insert: %w", err)
			}
		}
		if len(positions) < repository.MaxPageSize {
			return nil
		}
	}
}

// Run consumes the multiplexed tick channel until the context ends or the
// channel closes. Loss of a single feed only starves this loop of that
// feed's ticks, it never stops it.
func (t *Trading) Run(ctx context.Context, ticks <-chan model.PriceTick) {
	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			t.HandleTick(ctx, tick)
		}
	}
}

// HandleTick closes every open position on the tick's symbol whose trigger
// condition fired. A failed close leaves the position open and eligible for
// the next tick.
func (t *Trading) HandleTick(ctx context.Context, tick model.PriceTick) {
	for _, trigger := range Evaluate(t.registry.FindBySymbol(tick.Symbol), tick.Price) {
		closed, err := t.ClosePosition(ctx, trigger.Position.ID, tick.Price, trigger.Reason)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"PositionID": trigger.Position.ID,
				"Pair":       tick.Symbol,
				"Price":      tick.Price,
			}).Errorf("trading - HandleTick - ClosePosition: %v", err)
			continue
		}
		if closed != nil {
			logrus.WithFields(logrus.Fields{
				"PositionID": closed.ID,
				"Pair":       closed.Pair,
				"Reason":     closed.Reason,
				"ExitPrice":  closed.ExitPrice,
				"PNL":        closed.PNL,
			}).Info("position closed")
		}
	}
}

// ListActive pages through open positions straight from the store
func (t *Trading) ListActive(ctx context.Context, pair string, page, pageSize int) ([]*model.Position, error) {
	positions, err := t.positions.ListActive(ctx, repository.ActiveFilter{Pair: model.NormalizeSymbol(pair)}, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("trading - ListActive - ListActive: %w", err)
	}
	return positions, nil
}

// OpenFromAlert runs the open transition for an inbound alert. If a position
// with the same idempotency key is open: same direction means the alert is
// ignored, opposite direction means the existing position is closed at the
// alert price and a new one opened in the new direction.
func (t *Trading) OpenFromAlert(ctx context.Context, alert *model.Alert) (*OpenResult, error) {
	if err := validateAlert(alert); err != nil {
		return nil, err
	}
	if t.defaults.Leverage < 1 {
		return nil, fmt.Errorf("trading - OpenFromAlert: leverage %v is below 1", t.defaults.Leverage)
	}

	pair := model.NormalizeSymbol(alert.Pair)
	direction := model.DirectionFromSignal(alert.Signal)

	t.mu.Lock()
	defer t.mu.Unlock()

	existing := t.registry.FindByIdempotencyKey(alert.Name, pair, model.Paper)
	if existing != nil && existing.Direction == direction {
		return &OpenResult{Status: StatusIgnored, Position: existing}, nil
	}

	result := &OpenResult{Status: StatusOpened}
	if existing != nil {
		closed, err := t.close(ctx, existing, alert.Price, model.Reversal)
		if err != nil {
			return nil, err
		}
		result.Status = StatusReversed
		result.Closed = closed
	}

	position := t.buildPosition(alert, pair, direction)
	persistCtx, cancel := context.WithTimeout(ctx, t.defaults.PersistTimeout)
	defer cancel()
	if err := t.positions.InsertActive(persistCtx, position); err != nil {
		return nil, fmt.Errorf("trading - OpenFromAlert - InsertActive: %w", err)
	}
	if err := t.registry.Insert(position); err != nil {
		// store and registry must stay in lockstep
		if delErr := t.positions.DeleteActive(persistCtx, position.ID); delErr != nil {
			logrus.WithFields(logrus.Fields{"PositionID": position.ID}).
				Errorf("trading - OpenFromAlert - DeleteActive: %v", delErr)
		}
		return nil, fmt.Errorf("trading - OpenFromAlert - Insert: %w", err)
	}

	result.Position = position
	return result, nil
}

// ClosePosition runs the close transition for one position. Returns nil
// without error when the position is no longer open, a position closed in
// the meantime is never closed twice.
func (t *Trading) ClosePosition(ctx context.Context, id string, exitPrice float64, reason model.CloseReason) (*model.ClosedPosition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	position := t.registry.Find(id)
	if position == nil {
		return nil, nil
	}
	return t.close(ctx, position, exitPrice, reason)
}

// close computes the settlement, persists the closed position and removes
// the active record in one transaction, then drops the position from the
// registry. The registry is not touched until persistence succeeds, so a
// failed close leaves the position open. Caller holds t.mu.
func (t *Trading) close(ctx context.Context, position *model.Position, exitPrice float64, reason model.CloseReason) (*model.ClosedPosition, error) {
	closedAt := time.Now().UTC()
	executionFee := t.calculator.ExecutionFee(position.Quantity, position.EntryPrice)
	fundingFee := t.calculator.FundingFee(position.OpenedAt, closedAt,
		calc.AvgNotional(position.Quantity, position.EntryPrice, exitPrice))
	pnl := t.calculator.PNL(position.EntryPrice, exitPrice, position.Quantity, executionFee, fundingFee, position.Direction)
	roe := t.calculator.ROE(pnl, position.EntryPrice, position.Quantity, position.Leverage)

	closed := &model.ClosedPosition{
		Position:      *position,
		ExitPrice:     exitPrice,
		ClosedAt:      closedAt,
		PNL:           pnl,
		ROE:           roe,
		ExecutionFees: executionFee,
		FundingFees:   fundingFee,
		Reason:        reason,
	}

	persistCtx, cancel := context.WithTimeout(ctx, t.defaults.PersistTimeout)
	defer cancel()
	err := t.transactor.WithinTransaction(persistCtx, func(txCtx context.Context) error {
		if txErr := t.positions.InsertClosed(txCtx, closed); txErr != nil {
			return txErr
		}
		return t.positions.DeleteActive(txCtx, position.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("trading - close - WithinTransaction: %w", err)
	}

	if _, err = t.registry.Remove(position.ID); err != nil {
		return nil, fmt.Errorf("trading - close - Remove: %w", err)
	}
	return closed, nil
}

// buildPosition derives a new position from an alert, the default notional
// and leverage, and the alert's thresholds or the configured defaults.
// The liquidation price is computed once here and frozen.
func (t *Trading) buildPosition(alert *model.Alert, pair string, direction model.Direction) *model.Position {
	quantity := math.Round(t.defaults.NotionalValue/alert.Price*quantityPrecision) / quantityPrecision

	position := &model.Position{
		ID:               uuid.NewString(),
		Name:             alert.Name,
		Pair:             pair,
		Direction:        direction,
		Kind:             model.Paper,
		Quantity:         quantity,
		EntryPrice:       alert.Price,
		Leverage:         t.defaults.Leverage,
		LiquidationPrice: t.calculator.LiquidationPrice(alert.Price, t.defaults.Leverage, direction),
		TakeProfit:       alert.TakeProfit,
		StopLoss:         alert.StopLoss,
		OpenedAt:         time.Now().UTC(),
	}
	if position.TakeProfit == nil && t.defaults.TakeProfitPercent > 0 {
		takeProfit := offsetPrice(alert.Price, t.defaults.TakeProfitPercent, direction == model.Long)
		position.TakeProfit = &takeProfit
	}
	if position.StopLoss == nil && t.defaults.StopLossPercent > 0 {
		stopLoss := offsetPrice(alert.Price, t.defaults.StopLossPercent, direction == model.Short)
		position.StopLoss = &stopLoss
	}
	return position
}

// offsetPrice entry price moved by percent, up or down
func offsetPrice(price, percent float64, up bool) float64 {
	if up {
		return price * (1 + percent/100)
	}
	return price * (1 - percent/100)
}

func validateAlert(alert *model.Alert) error {
	if alert.Signal != model.Buy && alert.Signal != model.Sell {
		return fmt.Errorf("trading - validateAlert: unknown signal %q", alert.Signal)
	}
	if alert.Name == "" {
		return fmt.Errorf("trading - validateAlert: empty alert name")
	}
	if alert.Price <= 0 || math.IsNaN(alert.Price) || math.IsInf(alert.Price, 0) {
		return fmt.Errorf("trading - validateAlert: invalid price %v", alert.Price)
	}
	return nil
}
