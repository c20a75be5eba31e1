package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"coin-market-api/src/logger"
	"coin-market-api/src/metrics"
	"coin-market-api/src/models"
	"coin-market-api/src/realtime"
	"coin-market-api/src/service"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Market  *service.MarketService
	Feed    *realtime.Broadcaster
	Metrics *metrics.Metrics

	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients, keyed by connection id
	clients    map[string]*Client
	clientsMu  sync.RWMutex
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, market *service.MarketService, feed *realtime.Broadcaster, m *metrics.Metrics, log *logger.Logger) *APIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:     cfg,
		Logger:     log,
		Market:     market,
		Feed:       feed,
		Metrics:    m,
		engine:     gin.New(),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}

	s.engine.Use(s.recovery(), s.requestLogger(), s.cors())
	s.setupRoutes()

	// Built up front so Stop never races Start over the field
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	feed.AttachEmitter(s)
	go s.handleWebsockets()

	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/", s.getRoot)
	api.GET("/health", s.getHealth)
	api.GET("/symbols", s.getSymbols)
	api.GET("/klines", s.getKlines)
	api.GET("/price/:symbol", s.getPrice)

	// API documentation
	s.engine.GET("/static/swagger.json", s.getSwaggerSpec)
	s.engine.GET("/docs", s.getDocs)

	s.engine.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------

// Handler exposes the router, mostly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves until Stop; it returns nil once Stop has been called, even
// when Stop came first.
func (s *APIServer) Start() error {
	s.Logger.Info("Starting server on %s", s.httpServer.Addr)

	s.Feed.Start()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.quit)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)

		s.Feed.Stop()

		// Hijacked connections are not closed by Shutdown
		s.clientsMu.Lock()
		for id, client := range s.clients {
			client.conn.Close()
			delete(s.clients, id)
			close(client.send)
		}
		s.clientsMu.Unlock()
	})
	return err
}
