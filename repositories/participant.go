//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"context"
	"time"

	"bate-papo/domain"
)

// IParticipantRepository persists live participants keyed by name.
// Insert returns errors.ErrRecordExists on a duplicate name,
// lookups and mutations of unknown names return errors.ErrRecordNotFound.
// FindAll returns participants in join order.
type IParticipantRepository interface {
	Insert(ctx context.Context, participant domain.Participant) error
	FindByName(ctx context.Context, name string) (domain.Participant, error)
	UpdateLastSeen(ctx context.Context, name string, at time.Time) error
	Delete(ctx context.Context, name string) error
	FindAll(ctx context.Context) ([]domain.Participant, error)
}
