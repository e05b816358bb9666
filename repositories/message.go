//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"

	"bate-papo/domain"

	"github.com/google/uuid"
)

// IMessageRepository is the persistence collaborator behind the chat log.
// FindByID, Update and Delete return errors.ErrRecordNotFound for unknown ids.
// FindAll returns the log in CreatedAt order.
type IMessageRepository interface {
	Insert(ctx context.Context, message domain.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Message, error)
	Update(ctx context.Context, message domain.Message) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context) ([]domain.Message, error)
}
