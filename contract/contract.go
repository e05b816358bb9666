//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"bate-papo/domain"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging and supervision so workers don't need to name themselves.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IRegistry owns the set of live participants.
type IRegistry interface {
	Join(ctx context.Context, name string) (domain.Participant, error)
	Heartbeat(ctx context.Context, name string) error
	List(ctx context.Context) ([]domain.Participant, error)
	IsLive(ctx context.Context, name string) (bool, error)
	// WhileLive runs fn only if name is live, and keeps it live until fn returns.
	WhileLive(ctx context.Context, name string, fn func(ctx context.Context) error) error
	// Evict removes name if it is still expired for timeout and announces the departure.
	// It reports whether it did.
	Evict(ctx context.Context, name string, timeout time.Duration) (bool, error)
}

// IBus is the message side of the engine.
type IBus interface {
	Post(ctx context.Context, from string, draft domain.MessageDraft) (domain.Message, error)
	List(ctx context.Context, requester string, limit int) ([]domain.Message, error)
	Edit(ctx context.Context, id uuid.UUID, requester string, draft domain.MessageDraft) (domain.Message, error)
	Delete(ctx context.Context, id uuid.UUID, requester string) error
}

// IJournal appends to the chat log with a fresh id and timestamp.
type IJournal interface {
	Append(ctx context.Context, from, to, text string, kind domain.Kind) (domain.Message, error)
}

// TextFilter rewrites message bodies before they are stored.
type TextFilter interface {
	Censor(text string) string
}
