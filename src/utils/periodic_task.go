package utils

import (
	"context"
	"sync"
	"time"

	"coin-market-api/src/helpers"
	"coin-market-api/src/logger"

	"github.com/cenkalti/backoff/v4"
)

// -----------------------------------------------------------------------------

// PeriodicTask runs fn every Interval on its own goroutine until stopped.
// A failed or panicking run is logged and followed by a back-off pause.
type PeriodicTask struct {
	Name       string
	Interval   time.Duration
	ErrorPause time.Duration
	Logger     *logger.Logger
	OnError    func(err error)

	fn     func(ctx context.Context) error
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// -----------------------------------------------------------------------------

func NewPeriodicTask(name string, interval, errorPause time.Duration, fn func(ctx context.Context) error, log *logger.Logger) *PeriodicTask {
	return &PeriodicTask{
		Name:       name,
		Interval:   interval,
		ErrorPause: errorPause,
		Logger:     log,
		fn:         fn,
	}
}

// -----------------------------------------------------------------------------

// Start launches the loop. It returns false if the loop is already running.
func (t *PeriodicTask) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})

	go t.run(ctx, t.done)
	t.Logger.Info("%s started (interval %v)", t.Name, t.Interval)
	return true
}

// -----------------------------------------------------------------------------

// Stop cancels the loop and waits for the current run to finish.
// Must not be called from inside fn.
func (t *PeriodicTask) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	t.Logger.Info("%s stopped", t.Name)
}

// -----------------------------------------------------------------------------

func (t *PeriodicTask) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// -----------------------------------------------------------------------------

func (t *PeriodicTask) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	pause := backoff.NewExponentialBackOff()
	pause.InitialInterval = t.ErrorPause
	pause.MaxInterval = 6 * t.ErrorPause
	pause.MaxElapsedTime = 0
	pause.Reset()

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		wait := t.Interval
		err := helpers.Safely(t.Logger, t.Name, func() error { return t.fn(ctx) })
		if err != nil && ctx.Err() == nil {
			wait = pause.NextBackOff()
			t.Logger.Error("Error in %s: %v (retrying in %v)", t.Name, err, wait)
			if t.OnError != nil {
				t.OnError(err)
			}
		} else {
			pause.Reset()
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}
