package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bate-papo/contract"
	"bate-papo/domain"
	chaterr "bate-papo/errors"
	"bate-papo/observability"
	"bate-papo/repositories"

	"github.com/google/uuid"
)

// Bus validates, authorizes and routes messages to the journal.
type Bus struct {
	log          *slog.Logger
	registry     contract.IRegistry
	journal      contract.IJournal
	messages     repositories.IMessageRepository
	filter       contract.TextFilter
	metrics      *observability.Metrics
	locks        *stripedLocks
	storeTimeout time.Duration
}

// NewBus builds a bus. filter may be nil, in which case texts are stored as sent.
func NewBus(
	log *slog.Logger,
	registry contract.IRegistry,
	journal contract.IJournal,
	messages repositories.IMessageRepository,
	filter contract.TextFilter,
	metrics *observability.Metrics,
	storeTimeout time.Duration,
) *Bus {
	return &Bus{
		log:          log,
		registry:     registry,
		journal:      journal,
		messages:     messages,
		filter:       filter,
		metrics:      metrics,
		locks:        &stripedLocks{},
		storeTimeout: storeTimeout,
	}
}

// Post appends a user message. The author must stay live until the message is stored.
func (b *Bus) Post(ctx context.Context, from string, draft domain.MessageDraft) (domain.Message, error) {
	draft, err := draft.Normalize()
	if err != nil {
		return domain.Message{}, err
	}
	from = strings.TrimSpace(from)

	var posted domain.Message
	err = b.registry.WhileLive(ctx, from, func(ctx context.Context) error {
		var err error
		posted, err = b.journal.Append(ctx, from, draft.To, b.censor(draft.Text), draft.Kind)
		return err
	})
	if err != nil {
		return domain.Message{}, authorError(err)
	}
	b.metrics.IncPosted(posted.Kind)
	b.log.Debug("Message posted", "id", posted.ID, "from", from, "type", posted.Kind)
	return posted, nil
}

// List returns the messages requester may see, oldest first, keeping only the last limit.
func (b *Bus) List(ctx context.Context, requester string, limit int) ([]domain.Message, error) {
	storeCtx, cancel := context.WithTimeout(ctx, b.storeTimeout)
	defer cancel()
	messages, err := b.messages.FindAll(storeCtx)
	if err != nil {
		b.log.Error("Failed to list messages", "error", err)
		return nil, storeFailure(err)
	}
	visible := domain.VisibleTo(strings.TrimSpace(requester), messages)
	return domain.Tail(visible, limit), nil
}

// Edit replaces the recipient and text of a message authored by requester.
func (b *Bus) Edit(ctx context.Context, id uuid.UUID, requester string, draft domain.MessageDraft) (domain.Message, error) {
	draft, err := draft.Normalize()
	if err != nil {
		return domain.Message{}, err
	}
	requester = strings.TrimSpace(requester)

	var edited domain.Message
	err = b.registry.WhileLive(ctx, requester, func(ctx context.Context) error {
		unlock := b.locks.lock(id)
		defer unlock()

		current, err := b.authoredBy(ctx, id, requester)
		if err != nil {
			return err
		}
		if current.Kind != draft.Kind {
			return &domain.ValidationError{Fields: []domain.FieldError{{Field: "kind", Rule: "immutable"}}}
		}

		current.To = draft.To
		current.Text = b.censor(draft.Text)
		storeCtx, cancel := context.WithTimeout(ctx, b.storeTimeout)
		defer cancel()
		if err := b.messages.Update(storeCtx, current); err != nil {
			return b.storeError(err, "Failed to update message", id)
		}
		edited = current
		return nil
	})
	if err != nil {
		return domain.Message{}, authorError(err)
	}
	b.metrics.IncEdited()
	b.log.Debug("Message edited", "id", id, "from", requester)
	return edited, nil
}

// Delete removes a message authored by requester.
func (b *Bus) Delete(ctx context.Context, id uuid.UUID, requester string) error {
	requester = strings.TrimSpace(requester)

	unlock := b.locks.lock(id)
	defer unlock()

	if _, err := b.authoredBy(ctx, id, requester); err != nil {
		return err
	}
	storeCtx, cancel := context.WithTimeout(ctx, b.storeTimeout)
	defer cancel()
	if err := b.messages.Delete(storeCtx, id); err != nil {
		return b.storeError(err, "Failed to delete message", id)
	}
	b.metrics.IncDeleted()
	b.log.Debug("Message deleted", "id", id, "from", requester)
	return nil
}

// authoredBy loads id and checks requester may mutate it.
// Status messages belong to the system and are never mutable.
func (b *Bus) authoredBy(ctx context.Context, id uuid.UUID, requester string) (domain.Message, error) {
	storeCtx, cancel := context.WithTimeout(ctx, b.storeTimeout)
	defer cancel()
	message, err := b.messages.FindByID(storeCtx, id)
	if err != nil {
		return domain.Message{}, b.storeError(err, "Failed to find message", id)
	}
	if message.IsStatus() || message.From != requester {
		return domain.Message{}, fmt.Errorf("%w: %s", chaterr.ErrForbidden, id)
	}
	return message, nil
}

func (b *Bus) storeError(err error, msg string, id uuid.UUID) error {
	if errors.Is(err, chaterr.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", chaterr.ErrNotFound, id)
	}
	b.log.Error(msg, "id", id, "error", err)
	return storeFailure(err)
}

func (b *Bus) censor(text string) string {
	if b.filter == nil {
		return text
	}
	return b.filter.Censor(text)
}

func authorError(err error) error {
	if errors.Is(err, chaterr.ErrUnknownParticipant) {
		return fmt.Errorf("%w: %v", chaterr.ErrUnknownAuthor, err)
	}
	return err
}
