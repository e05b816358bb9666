// Package runtime owns the chat engine: the participant registry, the message
// bus, the journal and the background workers that keep presence up to date.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"bate-papo/contract"
	"bate-papo/observability"
	"bate-papo/repositories"
	"bate-papo/runtime/workers"

	"github.com/benbjohnson/clock"
)

type EngineConfig struct {
	StoreTimeout    time.Duration
	SweepInterval   time.Duration
	LivenessTimeout time.Duration
	RestartInterval time.Duration
}

// Engine wires the registry, the bus and the sweeper together.
// Persistence handles are passed in and stay owned by the caller.
type Engine struct {
	log        *slog.Logger
	Registry   *Registry
	Bus        *Bus
	Journal    *Journal
	sweeper    *workers.SweeperWorker
	supervisor contract.ISupervisor
}

func NewEngine(
	log *slog.Logger,
	clk clock.Clock,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	filter contract.TextFilter,
	metrics *observability.Metrics,
	cfg EngineConfig,
) *Engine {
	journal := NewJournal(log, clk, messages, cfg.StoreTimeout)
	registry := NewRegistry(log, clk, participants, journal, metrics, cfg.StoreTimeout)
	bus := NewBus(log, registry, journal, messages, filter, metrics, cfg.StoreTimeout)
	sweeper := workers.NewSweeperWorker(log, clk, registry, metrics, cfg.SweepInterval, cfg.LivenessTimeout)
	supervisor := workers.NewSupervisor(log, cfg.RestartInterval, metrics).Add(sweeper)

	return &Engine{
		log:        log,
		Registry:   registry,
		Bus:        bus,
		Journal:    journal,
		sweeper:    sweeper,
		supervisor: supervisor,
	}
}

// Start runs the background workers and blocks until ctx is canceled or Stop is called.
func (e *Engine) Start(ctx context.Context) {
	e.log.Info("Starting chat engine")
	e.supervisor.Run(ctx)
	e.log.Info("Chat engine stopped")
}

func (e *Engine) Stop() {
	e.supervisor.Stop()
}

// Sweep runs one presence sweep immediately.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	return e.sweeper.Sweep(ctx)
}
