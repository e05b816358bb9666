package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bate-papo/contract"
	"bate-papo/domain"
	chaterr "bate-papo/errors"
	"bate-papo/observability"
	"bate-papo/repositories"

	"github.com/benbjohnson/clock"
)

// Registry owns the live participants.
// Every check-then-act on a name (join, heartbeat, eviction) runs under the
// write lock; readers share the read lock. The repository is the source of truth.
type Registry struct {
	mu           sync.RWMutex
	log          *slog.Logger
	clock        clock.Clock
	participants repositories.IParticipantRepository
	journal      contract.IJournal
	metrics      *observability.Metrics
	storeTimeout time.Duration
}

func NewRegistry(
	log *slog.Logger,
	clk clock.Clock,
	participants repositories.IParticipantRepository,
	journal contract.IJournal,
	metrics *observability.Metrics,
	storeTimeout time.Duration,
) *Registry {
	return &Registry{
		log:          log,
		clock:        clk,
		participants: participants,
		journal:      journal,
		metrics:      metrics,
		storeTimeout: storeTimeout,
	}
}

// Join registers name and announces it to the room.
// If the announcement cannot be stored the participant is removed again,
// so no one is ever live without an entry event.
func (r *Registry) Join(ctx context.Context, name string) (domain.Participant, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return domain.Participant{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	participant := domain.NewParticipant(name, r.clock.Now().UTC())
	storeCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	err = r.participants.Insert(storeCtx, participant)
	cancel()
	if errors.Is(err, chaterr.ErrRecordExists) {
		return domain.Participant{}, fmt.Errorf("%w: %s", chaterr.ErrNameTaken, name)
	}
	if err != nil {
		r.log.Error("Failed to insert participant", "name", name, "error", err)
		return domain.Participant{}, storeFailure(err)
	}

	if _, err := r.journal.Append(ctx, name, domain.Broadcast, domain.EntryText(name), domain.KindStatus); err != nil {
		r.rollbackJoin(ctx, name)
		return domain.Participant{}, err
	}

	r.metrics.IncJoin()
	r.log.Info("Participant joined", "name", name)
	return participant, nil
}

// rollbackJoin runs even if the request context is already gone.
func (r *Registry) rollbackJoin(ctx context.Context, name string) {
	r.metrics.IncJoinRollback()
	rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.storeTimeout)
	defer cancel()
	if err := r.participants.Delete(rollbackCtx, name); err != nil {
		r.log.Error("Join rollback failed, participant is live without entry message", "name", name, "error", err)
		return
	}
	r.log.Warn("Join rolled back, entry message could not be stored", "name", name)
}

// Heartbeat refreshes the last seen time of a registered participant.
func (r *Registry) Heartbeat(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return chaterr.ErrUnknownParticipant
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	storeCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()
	err := r.participants.UpdateLastSeen(storeCtx, name, r.clock.Now().UTC())
	if errors.Is(err, chaterr.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", chaterr.ErrUnknownParticipant, name)
	}
	if err != nil {
		r.log.Error("Failed to refresh participant", "name", name, "error", err)
		return storeFailure(err)
	}
	return nil
}

// List returns a snapshot of the live participants in join order.
func (r *Registry) List(ctx context.Context) ([]domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	storeCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()
	participants, err := r.participants.FindAll(storeCtx)
	if err != nil {
		r.log.Error("Failed to list participants", "error", err)
		return nil, storeFailure(err)
	}
	return participants, nil
}

func (r *Registry) IsLive(ctx context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isLive(ctx, name)
}

// WhileLive holds the read lock for the duration of fn, so an eviction of
// name cannot interleave between the liveness check and fn's writes.
func (r *Registry) WhileLive(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	live, err := r.isLive(ctx, name)
	if err != nil {
		return err
	}
	if !live {
		return fmt.Errorf("%w: %s", chaterr.ErrUnknownParticipant, name)
	}
	return fn(ctx)
}

// Evict removes name if it is still expired at the current time and
// announces the departure. A heartbeat that landed after the sweeper's snapshot wins.
func (r *Registry) Evict(ctx context.Context, name string, timeout time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	storeCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()
	participant, err := r.participants.FindByName(storeCtx, name)
	if errors.Is(err, chaterr.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeFailure(err)
	}
	if !participant.Expired(r.clock.Now(), timeout) {
		return false, nil
	}
	if err := r.participants.Delete(storeCtx, name); err != nil {
		if errors.Is(err, chaterr.ErrRecordNotFound) {
			return false, nil
		}
		return false, storeFailure(err)
	}
	r.metrics.IncEviction()
	r.log.Info("Participant evicted", "name", name, "last_seen", participant.LastSeen)

	// Announced before the lock is released so a rejoin under the same name
	// always comes after the departure in the log. Failure does not undo the eviction.
	if _, err := r.journal.Append(ctx, name, domain.Broadcast, domain.DepartureText(name), domain.KindStatus); err != nil {
		r.metrics.IncAnnounceFailed()
		r.log.Warn("Departure message could not be stored", "name", name, "error", err)
	}
	return true, nil
}

func (r *Registry) isLive(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	storeCtx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()
	_, err := r.participants.FindByName(storeCtx, name)
	if errors.Is(err, chaterr.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		r.log.Error("Failed to look up participant", "name", name, "error", err)
		return false, storeFailure(err)
	}
	return true, nil
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %v", chaterr.ErrStoreFailure, err)
}
