package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"bate-papo/contract"
	"bate-papo/errors"
	"bate-papo/observability"

	"github.com/benbjohnson/clock"
)

// SweeperWorker evicts participants whose last heartbeat is older than the liveness timeout.
// Ticks only trigger sweeps: at most one sweep is in flight and ticks
// that fire meanwhile are skipped, never queued.
type SweeperWorker struct {
	log      *slog.Logger
	clock    clock.Clock
	registry contract.IRegistry
	metrics  *observability.Metrics
	interval time.Duration
	timeout  time.Duration
	inFlight atomic.Bool
	wg       sync.WaitGroup
}

func NewSweeperWorker(
	log *slog.Logger,
	clk clock.Clock,
	registry contract.IRegistry,
	metrics *observability.Metrics,
	interval, timeout time.Duration,
) *SweeperWorker {
	return &SweeperWorker{
		log:      log,
		clock:    clk,
		registry: registry,
		metrics:  metrics,
		interval: interval,
		timeout:  timeout,
	}
}

func (w *SweeperWorker) Run(ctx context.Context) error {
	w.log.Info("Starting presence sweeper", "interval", w.interval, "timeout", w.timeout)
	ticker := w.clock.Ticker(w.interval)
	defer ticker.Stop()
	// A sweep still running when we stop gets to finish its current eviction.
	defer w.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !w.inFlight.CompareAndSwap(false, true) {
				w.metrics.IncSweepSkipped()
				w.log.Warn("Previous sweep still running, tick skipped")
				continue
			}
			w.wg.Add(1)
			go w.runSweep(ctx)
		}
	}
}

func (w *SweeperWorker) runSweep(ctx context.Context) {
	defer w.wg.Done()
	defer w.inFlight.Store(false)
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Sweep panicked", "error", errors.ErrWorkerPanic, "panic", fmt.Sprint(r))
		}
	}()

	if _, err := w.Sweep(ctx); err != nil && ctx.Err() == nil {
		w.log.Error("Sweep failed", "error", err)
	}
}

// Sweep evicts every participant expired at the current time and returns how many were evicted.
// A failure on one participant does not stop the others.
func (w *SweeperWorker) Sweep(ctx context.Context) (int, error) {
	start := w.clock.Now()
	defer func() { w.metrics.ObserveSweep(w.clock.Since(start)) }()

	participants, err := w.registry.List(ctx)
	if err != nil {
		return 0, err
	}

	evicted := 0
	var firstErr error
	for _, p := range participants {
		if ctx.Err() != nil {
			return evicted, ctx.Err()
		}
		if !p.Expired(w.clock.Now(), w.timeout) {
			continue
		}
		ok, err := w.registry.Evict(ctx, p.Name, w.timeout)
		if err != nil {
			w.log.Error("Failed to evict participant", "name", p.Name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			evicted++
		}
	}
	if evicted > 0 {
		w.log.Debug("Sweep done", "evicted", evicted, "participants", len(participants))
	}
	return evicted, firstErr
}
