// Package main main
package main

import (
	"context"
	"fmt"
	"net/http"

	"Paper-Trading-Service/internal/calc"
	"Paper-Trading-Service/internal/config"
	"Paper-Trading-Service/internal/feed"
	"Paper-Trading-Service/internal/handler"
	"Paper-Trading-Service/internal/repository"
	"Paper-Trading-Service/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, reading configuration from environment")
	}

	cfg, err := config.NewMainConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	pool, err := dbConnection(cfg)
	if err != nil {
		logrus.Fatal(err)
	}
	defer pool.Close()

	positionRepository := repository.NewPositionRepository(repository.NewPgxWithinTransactionRunner(pool))
	registry := repository.NewRegistry()
	calculator := calc.NewCalculator(cfg.ExecutionFeePercent, cfg.FundingFeePercent,
		cfg.MaintenanceMarginPercent, cfg.FundingHours)

	tradingService := service.NewTrading(registry, positionRepository, repository.NewPgxTransactor(pool),
		calculator, service.Defaults{
			NotionalValue:     cfg.DefaultNotionalValue,
			Leverage:          cfg.DefaultLeverage,
			TakeProfitPercent: cfg.DefaultTakeProfitPercent,
			StopLossPercent:   cfg.DefaultStopLossPercent,
			PersistTimeout:    cfg.PersistTimeout,
		})

	// every open position must be in the registry before ticks or alerts
	// are accepted, a partial registry risks missed triggers
	if err = tradingService.LoadActivePositions(ctx); err != nil {
		logrus.Fatal(err)
	}
	logrus.Infof("loaded %d open positions", registry.Len())

	supervisor := feed.NewSupervisor(feedAdapters(cfg))
	supervisor.Start(ctx)
	go tradingService.Run(ctx, supervisor.Ticks())

	tradingHandler := handler.NewTrading(tradingService, cfg.TradingViewSecret, cfg.Symbols)
	if err = http.ListenAndServe(fmt.Sprintf("%s:%s", cfg.Host, cfg.Port), tradingHandler.Routes()); err != nil {
		logrus.Fatalf("error while listening server: %v", err)
	}
}

func feedAdapters(cfg *config.MainConfig) []feed.Adapter {
	var adapters []feed.Adapter
	for _, exchange := range cfg.Exchanges {
		switch exchange {
		case "binance":
			adapters = append(adapters, feed.NewBinance(cfg.Symbols))
		case "coinbase":
			adapters = append(adapters, feed.NewCoinbase(cfg.Symbols))
		default:
			logrus.Warnf("unknown exchange %q skipped", exchange)
		}
	}
	return adapters
}

func dbConnection(cfg *config.MainConfig) (*pgxpool.Pool, error) {
	pgURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", cfg.PostgresUser, cfg.PostgresPassword,
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)

	pool, err := pgxpool.New(context.Background(), pgURL)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration data: %v", err)
	}
	if err = pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("database not responding: %v", err)
	}
	return pool, nil
}
