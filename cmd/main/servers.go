package main

import (
	"fmt"
	"net"

	"coin-market-api/src/logger"
	"coin-market-api/src/models"
)

// -----------------------------------------------------------------------------

// startServers orchestrates the startup of all server components
func startServers(a *app, cfg *models.MConfig, appLogger *logger.Logger) {

	// 1. HTTP + WebSocket
	go func() {
		if err := a.api.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	if a.grpcSrv == nil {
		appLogger.Info("gRPC control server disabled")
		return
	}
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.GrpcHost, cfg.GrpcPort)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			appLogger.Critical("failed to listen for gRPC: %v", err)
			return
		}

		appLogger.Info("Starting gRPC Control Server on %s", addr)
		if err := a.grpcSrv.Serve(lis); err != nil {
			appLogger.Error("gRPC server stopped: %v", err)
		}
	}()
}

// -----------------------------------------------------------------------------

func stopServers(a *app, appLogger *logger.Logger) {
	if a.grpcSrv != nil {
		a.grpcSrv.GracefulStop()
	}
	if err := a.api.Stop(); err != nil {
		appLogger.Error("HTTP shutdown: %v", err)
	}
}
