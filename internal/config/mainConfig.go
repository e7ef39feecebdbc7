// Package config main config
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v7"
)

// MainConfig with init data
type MainConfig struct {
	PostgresPort     string `env:"POSTGRES_PORT,notEmpty" envDefault:"5432"`
	PostgresHost     string `env:"POSTGRES_HOST,notEmpty" envDefault:"localhost"`
	PostgresPassword string `env:"POSTGRES_PASSWORD,notEmpty" envDefault:"postgres"`
	PostgresUser     string `env:"POSTGRES_USER,notEmpty" envDefault:"postgres"`
	PostgresDB       string `env:"POSTGRES_DB,notEmpty" envDefault:"postgres"`
	Port             string `env:"PORT,notEmpty" envDefault:"3000"`
	Host             string `env:"HOST,notEmpty" envDefault:"0.0.0.0"`

	TradingViewSecret string `env:"TRADINGVIEW_SECRET,notEmpty"`

	DefaultNotionalValue     float64 `env:"DEFAULT_NOTIONAL_VALUE" envDefault:"1000"`
	DefaultLeverage          float64 `env:"DEFAULT_LEVERAGE" envDefault:"3"`
	DefaultTakeProfitPercent float64 `env:"DEFAULT_TAKE_PROFIT_PERCENT" envDefault:"0"`
	DefaultStopLossPercent   float64 `env:"DEFAULT_STOP_LOSS_PERCENT" envDefault:"0"`

	ExecutionFeePercent      float64 `env:"EXECUTION_FEE_PERCENT" envDefault:"0.05"`
	FundingFeePercent        float64 `env:"FUNDING_FEE_PERCENT" envDefault:"0.01"`
	MaintenanceMarginPercent float64 `env:"MAINTENANCE_MARGIN_PERCENT" envDefault:"1"`
	FundingHours             []int   `env:"FUNDING_HOURS" envDefault:"0,8,16"`

	Symbols   []string `env:"SYMBOLS" envDefault:"BTC-USD,ETH-USD,SOL-USDT"`
	Exchanges []string `env:"EXCHANGES" envDefault:"binance,coinbase"`

	PersistTimeout time.Duration `env:"PERSIST_TIMEOUT" envDefault:"5s"`
}

// NewMainConfig parsing config from environment
func NewMainConfig() (*MainConfig, error) {
	mainConfig := &MainConfig{}

	err := env.Parse(mainConfig)
	if err != nil {
		return nil, fmt.Errorf("config - NewMainConfig - Parse: %w", err)
	}

	if mainConfig.DefaultLeverage < 1 {
		return nil, fmt.Errorf("config - NewMainConfig: leverage %v is below 1", mainConfig.DefaultLeverage)
	}
	for _, hour := range mainConfig.FundingHours {
		if hour < 0 || hour > 23 {
			return nil, fmt.Errorf("config - NewMainConfig: funding hour %d out of range", hour)
		}
	}
	if len(mainConfig.Symbols) == 0 {
		return nil, fmt.Errorf("config - NewMainConfig: empty symbol allow-list")
	}

	return mainConfig, nil
}
