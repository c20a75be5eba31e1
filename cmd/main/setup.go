package main

import (
	"os"
	"runtime/debug"
	"time"

	"coin-market-api/src/grpc_control"
	"coin-market-api/src/helpers"
	"coin-market-api/src/logger"
	"coin-market-api/src/metrics"
	"coin-market-api/src/models"
	"coin-market-api/src/realtime"
	"coin-market-api/src/server"
	"coin-market-api/src/service"
	"coin-market-api/src/storage"

	"google.golang.org/grpc"
)

// timestampSeedCoin is the coin whose last sample timestamp seeds simulated ticks.
const timestampSeedCoin = "bitcoin"

type app struct {
	feed    *realtime.Broadcaster
	api     *server.APIServer
	grpcSrv *grpc.Server
}

// -----------------------------------------------------------------------------

// setupApp wires every component from the loaded configuration
func setupApp(cfg *models.MConfig) (*app, error) {
	store, err := storage.NewSampleStore(cfg.Market.SampleDataPath, logger.NewLogger(cfg, "SampleStore"))
	if err != nil {
		return nil, err
	}

	m := metrics.NewMetrics()
	m.SampleDataCoins.Set(float64(len(store.CoinIDs())))

	market := service.NewMarketService(store, cfg, logger.NewLogger(cfg, "MarketService"))

	sim := realtime.NewSimulator(
		cfg.Realtime.SeedPrices,
		realtime.BaseTimestamp(store, timestampSeedCoin),
		time.Duration(cfg.Realtime.PriceUpdateIntervalSeconds)*time.Second,
		cfg.Realtime.MaxChangePercent,
		nil,
	)
	feed := realtime.NewBroadcaster(cfg, realtime.NewRegistry(), sim, m, logger.NewLogger(cfg, "Broadcaster"))

	api := server.NewAPIServer(cfg, market, feed, m, logger.NewLogger(cfg, "APIServer"))

	var grpcSrv *grpc.Server
	if cfg.GrpcPort != 0 {
		controlLogger := logger.NewLogger(cfg, "ControlService")
		grpcSrv = grpc_control.NewServer(grpc_control.NewControlService(feed, store, controlLogger), controlLogger)
	}

	return &app{feed: feed, api: api, grpcSrv: grpcSrv}, nil
}

// -----------------------------------------------------------------------------

// applyMemoryLimit sets the GC soft limit unless GOMEMLIMIT already does.
func applyMemoryLimit(appLogger *logger.Logger) {
	if os.Getenv("GOMEMLIMIT") != "" {
		appLogger.Info("Memory limit taken from GOMEMLIMIT")
		return
	}

	limitMB, ok := helpers.RecommendedMemoryLimitMB()
	if !ok {
		appLogger.Warning("Could not determine system memory. Defaulting to %d MB.", limitMB)
	}
	debug.SetMemoryLimit(int64(limitMB) << 20)
	appLogger.Info("Memory Limit set to: %d MB", limitMB)
}
