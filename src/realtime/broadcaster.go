package realtime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"coin-market-api/src/helpers"
	"coin-market-api/src/interfaces"
	"coin-market-api/src/logger"
	"coin-market-api/src/metrics"
	"coin-market-api/src/models"
	"coin-market-api/src/utils"
)

// -----------------------------------------------------------------------------

// Broadcaster drives simulated ticks to realtime connections. It owns two
// loops: the poller, alive while at least one connection is open, and the
// global pusher, alive for the whole process when enabled.
type Broadcaster struct {
	Registry       *Registry
	Simulator      *Simulator
	DefaultSymbols []string
	Metrics        *metrics.Metrics
	Logger         *logger.Logger

	emitter     interfaces.IEventEmitter
	emitterMu   sync.RWMutex
	poller      *utils.PeriodicTask
	pusher      *utils.PeriodicTask
	pushEnabled bool
	stopped     bool
	lifecycle   sync.Mutex
}

// -----------------------------------------------------------------------------

func NewBroadcaster(cfg *models.MConfig, registry *Registry, sim *Simulator, m *metrics.Metrics, log *logger.Logger) *Broadcaster {
	b := &Broadcaster{
		Registry:       registry,
		Simulator:      sim,
		DefaultSymbols: append([]string{}, cfg.Market.DefaultSymbols...),
		Metrics:        m,
		Logger:         log,
		pushEnabled:    cfg.Realtime.DefaultPushEnabled,
	}

	errorPause := time.Duration(cfg.Realtime.ErrorPauseSeconds) * time.Second
	b.poller = utils.NewPeriodicTask("price poller",
		time.Duration(cfg.Realtime.PriceUpdateIntervalSeconds)*time.Second, errorPause, b.PollOnce, log)
	b.poller.OnError = func(error) { m.LoopErrors.WithLabelValues(metrics.PathPoller).Inc() }

	b.pusher = utils.NewPeriodicTask("default price pusher",
		time.Duration(cfg.Realtime.UpdateIntervalSeconds)*time.Second, errorPause, b.PushOnce, log)
	b.pusher.OnError = func(error) { m.LoopErrors.WithLabelValues(metrics.PathPusher).Inc() }

	return b
}

// -----------------------------------------------------------------------------

// AttachEmitter sets the delivery target. Ticks generated before it is set are skipped.
func (b *Broadcaster) AttachEmitter(e interfaces.IEventEmitter) {
	b.emitterMu.Lock()
	defer b.emitterMu.Unlock()
	b.emitter = e
}

// -----------------------------------------------------------------------------

// Start launches the global pusher when enabled.
func (b *Broadcaster) Start() {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()
	if b.pushEnabled && !b.stopped {
		b.pusher.Start()
	}
}

// -----------------------------------------------------------------------------

// Stop halts both loops for good: later connections no longer start the poller.
func (b *Broadcaster) Stop() {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()
	b.stopped = true
	b.pusher.Stop()
	b.poller.Stop()
}

// -----------------------------------------------------------------------------
// Connection Lifecycle
// -----------------------------------------------------------------------------

// Connect registers connID with no subscriptions; the first connection starts the poller.
func (b *Broadcaster) Connect(connID string) {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()

	n := b.Registry.Add(connID)
	b.Metrics.Connections.Set(float64(n))
	b.Logger.Info("Client connected: %s (%d open)", connID, n)

	if n == 1 && !b.stopped {
		b.poller.Start()
	}
}

// -----------------------------------------------------------------------------

// Disconnect removes connID; the last one out stops the poller.
func (b *Broadcaster) Disconnect(connID string) {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()

	n := b.Registry.Remove(connID)
	b.Metrics.Connections.Set(float64(n))
	b.Logger.Info("Client disconnected: %s (%d open)", connID, n)

	if n == 0 {
		b.poller.Stop()
	}
}

// -----------------------------------------------------------------------------

// Subscribe replaces the subscription set of connID and immediately sends one
// tick per subscribed coin that has a simulated price.
func (b *Broadcaster) Subscribe(connID string, coinIDs []string) error {
	if !b.Registry.Replace(connID, coinIDs) {
		return fmt.Errorf("subscribe %s: %w", connID, helpers.ErrUnknownConnection)
	}
	b.Logger.Info("Client %s subscribed to %v", connID, coinIDs)

	var errs []error
	for _, coinID := range coinIDs {
		if err := b.tick(connID, coinID, metrics.PathSubscribe); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// -----------------------------------------------------------------------------

func (b *Broadcaster) PollerRunning() bool {
	return b.poller.Running()
}

// -----------------------------------------------------------------------------
// Loop Iterations
// -----------------------------------------------------------------------------

// PollOnce sends one tick per known subscribed coin to every connection.
func (b *Broadcaster) PollOnce(ctx context.Context) error {
	snapshot := b.Registry.Snapshot()

	var errs []error
	for _, connID := range sortedKeys(snapshot) {
		if ctx.Err() != nil {
			break
		}
		for _, coinID := range snapshot[connID] {
			if err := b.tick(connID, coinID, metrics.PathPoller); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// -----------------------------------------------------------------------------

// PushOnce is the coarse global path. It ticks the union of every
// subscription (or the default symbols when nobody subscribed to anything)
// to connections that asked for the coin or have no subscription at all.
func (b *Broadcaster) PushOnce(ctx context.Context) error {
	snapshot := b.Registry.Snapshot()
	connIDs := sortedKeys(snapshot)

	var union []string
	seen := make(map[string]struct{})
	for _, connID := range connIDs {
		for _, coinID := range snapshot[connID] {
			if _, ok := seen[coinID]; !ok {
				seen[coinID] = struct{}{}
				union = append(union, coinID)
			}
		}
	}
	if len(union) == 0 {
		union = b.DefaultSymbols
	}

	var errs []error
	for _, connID := range connIDs {
		if ctx.Err() != nil {
			break
		}
		subscribed := snapshot[connID]
		for _, coinID := range union {
			if len(subscribed) > 0 && !contains(subscribed, coinID) {
				continue
			}
			if err := b.tick(connID, coinID, metrics.PathPusher); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// -----------------------------------------------------------------------------

// tick generates and delivers one update. Unknown coins, connections that
// vanished mid-iteration and slow consumers are not errors: a dropped tick
// must not put the shared loop into its error pause.
func (b *Broadcaster) tick(connID, coinID, path string) error {
	b.emitterMu.RLock()
	emitter := b.emitter
	b.emitterMu.RUnlock()
	if emitter == nil {
		return nil
	}

	if !b.Simulator.Known(coinID) {
		return nil
	}
	update, ok := b.Simulator.Next(coinID)
	if !ok {
		return nil
	}

	if err := emitter.Emit(connID, models.EventPriceUpdate, update); err != nil {
		if errors.Is(err, helpers.ErrUnknownConnection) {
			b.Logger.Debug("Skipping %s tick for closed connection %s", coinID, connID)
			return nil
		}
		if errors.Is(err, helpers.ErrSlowConsumer) {
			b.Logger.Debug("Dropped %s tick for slow connection %s", coinID, connID)
			return nil
		}
		return fmt.Errorf("emit %s to %s: %w", coinID, connID, err)
	}

	b.Metrics.TicksEmitted.WithLabelValues(path).Inc()
	b.Logger.Debug("Sent update to %s: %+v", connID, update)
	return nil
}

// -----------------------------------------------------------------------------

// BaseTimestamp picks the last sample timestamp of coinID, or now.
func BaseTimestamp(store interfaces.IMarketStore, coinID string) int64 {
	if ts, ok := store.LastTimestamp(coinID); ok {
		return ts
	}
	return time.Now().UnixMilli()
}

// -----------------------------------------------------------------------------

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// -----------------------------------------------------------------------------

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
