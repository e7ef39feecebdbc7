// Package repository position store
package repository

import (
	"context"
	"errors"
	"fmt"

	"Paper-Trading-Service/internal/model"

	"github.com/jackc/pgx/v5"
)

// MaxPageSize fixed upper bound for ListActive pages
const MaxPageSize = 100

// ActiveFilter optional filter for ListActive
type ActiveFilter struct {
	Pair string
}

// Position postgres entity, the system of record for open and closed positions
type Position struct {
	runner PgxWithinTransactionRunner
}

// NewPositionRepository creating new position repository
func NewPositionRepository(runner PgxWithinTransactionRunner) *Position {
	return &Position{runner: runner}
}

// InsertActive insert open position
func (r *Position) InsertActive(ctx context.Context, position *model.Position) error {
	_, err := r.runner.Exec(ctx,
		`insert into active_positions
			(id, name, pair, direction, kind, quantity, entry_price, leverage, liquidation_price, take_profit, stop_loss, opened_at)
		 values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		position.ID, position.Name, position.Pair, position.Direction, position.Kind,
		position.Quantity, position.EntryPrice, position.Leverage, position.LiquidationPrice,
		position.TakeProfit, position.StopLoss, position.OpenedAt)
	if err != nil {
		return fmt.Errorf("position - InsertActive - Exec: %w", err)
	}

	return nil
}

// DeleteActive delete open position, fails if the row is absent
func (r *Position) DeleteActive(ctx context.Context, id string) error {
	var idCheck string
	err := r.runner.QueryRow(ctx, "delete from active_positions where id=$1 returning id", id).Scan(&idCheck)
	if err != nil {
		return fmt.Errorf("position - DeleteActive - QueryRow: %w", err)
	}

	return nil
}

// InsertClosed insert settled position, written once and never updated
func (r *Position) InsertClosed(ctx context.Context, position *model.ClosedPosition) error {
	_, err := r.runner.Exec(ctx,
		`insert into closed_positions
			(id, name, pair, direction, kind, quantity, entry_price, leverage, liquidation_price,
			 take_profit, stop_loss, opened_at, exit_price, closed_at, pnl, roe, execution_fees, funding_fees, reason)
		 values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		position.ID, position.Name, position.Pair, position.Direction, position.Kind,
		position.Quantity, position.EntryPrice, position.Leverage, position.LiquidationPrice,
		position.TakeProfit, position.StopLoss, position.OpenedAt,
		position.ExitPrice, position.ClosedAt, position.PNL, position.ROE,
		position.ExecutionFees, position.FundingFees, position.Reason)
	if err != nil {
		return fmt.Errorf("position - InsertClosed - Exec: %w", err)
	}

	return nil
}

// FindActiveByIdempotencyKey get open position by (alert name, pair, kind),
// returns nil without error when absent
func (r *Position) FindActiveByIdempotencyKey(ctx context.Context, name, pair string, kind model.Kind) (*model.Position, error) {
	position := model.Position{}
	err := r.runner.QueryRow(ctx,
		`select id, name, pair, direction, kind, quantity, entry_price, leverage, liquidation_price, take_profit, stop_loss, opened_at
		 from active_positions
		 where name=$1 and pair=$2 and kind=$3`,
		name, pair, kind).Scan(
		&position.ID, &position.Name, &position.Pair, &position.Direction, &position.Kind,
		&position.Quantity, &position.EntryPrice, &position.Leverage, &position.LiquidationPrice,
		&position.TakeProfit, &position.StopLoss, &position.OpenedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("position - FindActiveByIdempotencyKey - QueryRow: %w", err)
	}

	return &position, nil
}

// ListActive page through open positions, pages are 1-based and pageSize is
// clamped to MaxPageSize
func (r *Position) ListActive(ctx context.Context, filter ActiveFilter, page, pageSize int) ([]*model.Position, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	rows, err := r.runner.Query(ctx,
		`select id, name, pair, direction, kind, quantity, entry_price, leverage, liquidation_price, take_profit, stop_loss, opened_at
		 from active_positions
		 where ($1 = '' or pair = $1)
		 order by opened_at, id
		 limit $2 offset $3`,
		filter.Pair, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("position - ListActive - Query: %w", err)
	}
	defer rows.Close()

	var result []*model.Position
	for rows.Next() {
		position := model.Position{}
		err = rows.Scan(
			&position.ID, &position.Name, &position.Pair, &position.Direction, &position.Kind,
			&position.Quantity, &position.EntryPrice, &position.Leverage, &position.LiquidationPrice,
			&position.TakeProfit, &position.StopLoss, &position.OpenedAt)
		if err != nil {
			return nil, fmt.Errorf("position - ListActive - Scan: %w", err)
		}
		result = append(result, &position)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("position - ListActive - Rows: %w", err)
	}

	return result, nil
}
