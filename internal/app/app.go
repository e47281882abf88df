package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"trade-journal/internal/api"
	"trade-journal/internal/config"
	"trade-journal/internal/engine"
	"trade-journal/internal/instrument"
	"trade-journal/internal/logging"
	"trade-journal/internal/model"
)

// Version is the journald release reported at startup.
const Version = "0.3.0"

// App is the application lifecycle manager.
type App struct {
	cfg *config.Config
}

// New creates a new App instance.
func New(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Components are the wired parts of a running journal.
type Components struct {
	Engine *engine.Engine
	Server *api.Server
}

// Build wires the instrument registry, engine and API server from configuration.
func (a *App) Build(log *zap.Logger) Components {
	registry := instrument.NewRegistry(a.cfg.Instruments...)
	eng := engine.New(
		a.cfg.EvaluationConfig(),
		instrument.NewCalculator(registry),
		engine.NewStore(a.cfg.Journal.MaxEntriesPerSession),
	)
	eng.SetLogger(log)

	srv := api.NewServer(a.cfg.API.ListenAddress, a.cfg.API.AllowedOrigin, eng, log)
	return Components{Engine: eng, Server: srv}
}

// Run starts the full application: engine, API, and signal handling.
func (a *App) Run() error {
	log, err := logging.Build(logging.FromConfig(a.cfg))
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting journald",
		zap.String("version", Version),
		zap.String("env", a.cfg.App.Env),
		zap.String("log_level", a.cfg.App.LogLevel),
		zap.Int("extra_instruments", len(a.cfg.Instruments)),
	)

	c := a.Build(log)
	if a.cfg.Journal.SeedDemo {
		log.Info("seeding demo journal")
		seedDemoData(c.Engine, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- c.Engine.Run(ctx, a.cfg.PurgeInterval(), a.cfg.Retention())
	}()
	go func() {
		errCh <- c.Server.Run(ctx)
	}()

	// Wait for shutdown signal or fatal error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		log.Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("fatal_error", zap.Error(err))
			runErr = fmt.Errorf("journald: %w", err)
		}
	}

	cancel()
	log.Info("journald stopped")
	return runErr
}

// seedDemoData logs a sample session covering every market so the dashboard
// has data on first start.
func seedDemoData(eng *engine.Engine, log *zap.Logger) {
	trades := []model.RawTrade{
		{
			TradeID: "DEMO-1", Market: "FOREX", Symbol: "EURUSD", Direction: "BUY",
			EntryPrice: model.Num(1.08250), ExitPrice: model.Num(1.08550),
			StopLoss: model.Num(1.08150), TakeProfit: model.Num(1.08550),
			LotSize: model.Num(0.3), AccountBalance: model.Num(10_000), RuleFollowed: true,
		},
		{
			TradeID: "DEMO-2", Market: "COMMODITY", Symbol: "XAUUSD", Direction: "SELL",
			EntryPrice: model.Num(2025.10), ExitPrice: model.Num(2031.40),
			LotSize: model.Num(0.1), AccountBalance: model.Num(10_000),
			Notes: "chased the breakout without a stop",
		},
		{
			TradeID: "DEMO-3", Market: "CRYPTO", Symbol: "BTCUSD", Direction: "BUY",
			EntryPrice: model.Num(64_200), ExitPrice: model.Num(65_100),
			StopLoss: model.Num(63_800), TakeProfit: model.Num(65_100),
			LotSize: model.Num(0.05), AccountBalance: model.Num(10_000), RuleFollowed: true,
		},
		{
			TradeID: "DEMO-4", Market: "INDIAN", Symbol: "NIFTY", InstrumentSubtype: "index", Direction: "BUY",
			EntryPrice: model.Num(22_150), ExitPrice: model.Num(22_110),
			StopLoss: model.Num(22_100), TakeProfit: model.Num(22_250),
			LotSize: model.Num(1), AccountBalance: model.Num(500_000), RuleFollowed: true,
		},
	}

	logged := 0
	for i := range trades {
		if _, err := eng.LogTrade("demo", &trades[i]); err != nil {
			log.Warn("demo_seed_failed", zap.String("trade_id", trades[i].TradeID.String()), zap.Error(err))
			continue
		}
		logged++
	}

	log.Info("demo_seed_complete",
		zap.String("session", "demo"),
		zap.Int("trades", logged),
	)
}
