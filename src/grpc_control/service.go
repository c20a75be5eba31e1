package grpc_control

import (
	"context"
	"time"

	"coin-market-api/src/interfaces"
	"coin-market-api/src/logger"
	"coin-market-api/src/realtime"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ControlService exposes a read-only view of the realtime state
type ControlService struct {
	Feed   *realtime.Broadcaster
	Store  interfaces.IMarketStore
	Logger *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(feed *realtime.Broadcaster, store interfaces.IMarketStore, log *logger.Logger) *ControlService {
	return &ControlService{
		Feed:   feed,
		Store:  store,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	prices := make(map[string]interface{})
	for coin, price := range s.Feed.Simulator.Prices() {
		prices[coin] = price
	}

	coins := make([]interface{}, 0)
	for _, id := range s.Store.CoinIDs() {
		coins = append(coins, id)
	}

	resp, err := structpb.NewStruct(map[string]interface{}{
		"connections":      s.Feed.Registry.Len(),
		"poller_running":   s.Feed.PollerRunning(),
		"ticks_generated":  s.Feed.Simulator.Generated(),
		"simulated_prices": prices,
		"coins":            coins,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to build status: %v", err)
	}
	return resp, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListSubscriptions(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	subs := make(map[string]interface{})
	for connID, coinIDs := range s.Feed.Registry.Snapshot() {
		list := make([]interface{}, 0, len(coinIDs))
		for _, id := range coinIDs {
			list = append(list, id)
		}
		subs[connID] = list
	}

	resp, err := structpb.NewStruct(subs)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to build subscriptions: %v", err)
	}
	return resp, nil
}

// -----------------------------------------------------------------------------

// NewServer builds a gRPC server with the control service and call logging.
func NewServer(svc *ControlService, log *logger.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("gRPC %s (%v): err=%v", info.FullMethod, time.Since(start), err)
		return resp, err
	}))
	RegisterControlServer(srv, svc)
	return srv
}
