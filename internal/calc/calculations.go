// Package calc pure fee and pnl calculations, no I/O
package calc

import (
	"sort"
	"time"

	"Paper-Trading-Service/internal/model"
)

// rates are configured in percentage format, matching exchange fee schedules
const (
	DefaultExecutionFeePercent  = 0.05
	DefaultFundingFeePercent    = 0.01
	DefaultMaintenanceMarginPct = 1.0
)

// DefaultFundingHours UTC hours at which funding accrues
var DefaultFundingHours = []int{0, 8, 16}

// Calculator holds configured fee rates. All methods are deterministic.
type Calculator struct {
	ExecutionFeePercent      float64
	FundingFeePercent        float64
	MaintenanceMarginPercent float64
	FundingHours             []int
}

// NewCalculator constructor, funding hours are kept sorted
func NewCalculator(executionFeePct, fundingFeePct, maintenanceMarginPct float64, fundingHours []int) *Calculator {
	hours := make([]int, len(fundingHours))
	copy(hours, fundingHours)
	sort.Ints(hours)
	return &Calculator{
		ExecutionFeePercent:      executionFeePct,
		FundingFeePercent:        fundingFeePct,
		MaintenanceMarginPercent: maintenanceMarginPct,
		FundingHours:             hours,
	}
}

// NewDefaultCalculator calculator with the simulated exchange defaults
func NewDefaultCalculator() *Calculator {
	return NewCalculator(DefaultExecutionFeePercent, DefaultFundingFeePercent,
		DefaultMaintenanceMarginPct, DefaultFundingHours)
}

// LiquidationPrice price at which a leveraged position is forcibly closed.
// Leverage validity is the caller's contract, enforced at open time.
func (c *Calculator) LiquidationPrice(entryPrice, leverage float64, direction model.Direction) float64 {
	margin := c.MaintenanceMarginPercent / 100
	if direction == model.Long {
		return entryPrice * (1 - 1/leverage + margin/leverage)
	}
	return entryPrice * (1 + 1/leverage - margin/leverage)
}

// ExecutionFee doubled because both the open and the close leg are charged
func (c *Calculator) ExecutionFee(quantity, entryPrice float64) float64 {
	return 2 * (c.ExecutionFeePercent / 100 * quantity * entryPrice)
}

// FundingFee walks the fixed daily funding instants from the first instant
// strictly after openedAt up to and including closedAt, accruing the funding
// rate on the average notional at every step. The step count is bounded by
// the trade duration over the funding interval.
func (c *Calculator) FundingFee(openedAt, closedAt time.Time, avgNotional float64) float64 {
	if !closedAt.After(openedAt) || len(c.FundingHours) == 0 {
		return 0
	}

	interval := 24 * time.Hour / time.Duration(len(c.FundingHours))
	instant := c.firstInstantAfter(openedAt.UTC())

	var fee float64
	for !instant.After(closedAt.UTC()) {
		fee += avgNotional * c.FundingFeePercent / 100
		instant = instant.Add(interval)
	}
	return fee
}

// firstInstantAfter first configured funding instant strictly after t
func (c *Calculator) firstInstantAfter(t time.Time) time.Time {
	year, month, day := t.Date()
	for _, h := range c.FundingHours {
		instant := time.Date(year, month, day, h, 0, 0, 0, time.UTC)
		if instant.After(t) {
			return instant
		}
	}
	return time.Date(year, month, day+1, c.FundingHours[0], 0, 0, 0, time.UTC)
}

// PNL realized profit or loss net of execution and funding fees
func (c *Calculator) PNL(entryPrice, exitPrice, quantity, executionFee, fundingFee float64, direction model.Direction) float64 {
	raw := (exitPrice - entryPrice) * quantity
	if direction == model.Short {
		raw = (entryPrice - exitPrice) * quantity
	}
	return raw - executionFee - fundingFee
}

// ROE return on equity in percentage format, margin = notional / leverage
func (c *Calculator) ROE(pnl, entryPrice, quantity, leverage float64) float64 {
	return pnl / (entryPrice * quantity / leverage) * 100
}

// AvgNotional average of the entry-side and exit-side notional value
func AvgNotional(quantity, entryPrice, exitPrice float64) float64 {
	return (quantity*entryPrice + quantity*exitPrice) / 2
}
