package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bate-papo/domain"
	"bate-papo/errors"
	"bate-papo/repositories"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// Journal is the single writer of the chat log.
// Id, timestamp and insert happen under one lock so the log order is the
// acceptance order and timestamps are strictly increasing.
type Journal struct {
	mu           sync.Mutex
	log          *slog.Logger
	clock        clock.Clock
	messages     repositories.IMessageRepository
	storeTimeout time.Duration
	last         time.Time
}

func NewJournal(log *slog.Logger, clk clock.Clock, messages repositories.IMessageRepository, storeTimeout time.Duration) *Journal {
	return &Journal{log: log, clock: clk, messages: messages, storeTimeout: storeTimeout}
}

func (j *Journal) Append(ctx context.Context, from, to, text string, kind domain.Kind) (domain.Message, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.clock.Now().UTC()
	if !now.After(j.last) {
		now = j.last.Add(time.Nanosecond)
	}
	message := domain.Message{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Text:      text,
		Kind:      kind,
		CreatedAt: now,
	}

	storeCtx, cancel := context.WithTimeout(ctx, j.storeTimeout)
	defer cancel()
	if err := j.messages.Insert(storeCtx, message); err != nil {
		j.log.Error("Failed to append message", "from", from, "kind", kind, "error", err)
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStoreFailure, err)
	}
	j.last = now
	return message, nil
}
