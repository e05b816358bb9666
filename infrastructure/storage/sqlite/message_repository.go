package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bate-papo/domain"
	chaterr "bate-papo/errors"

	"github.com/google/uuid"
)

type MessageRepository struct {
	store *Store
}

func NewMessageRepository(store *Store) *MessageRepository {
	return &MessageRepository{store: store}
}

func (r *MessageRepository) Insert(ctx context.Context, message domain.Message) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO messages(id, from_name, to_name, text, type, time) VALUES(?, ?, ?, ?, ?, ?)`,
		message.ID.String(), message.From, message.To, message.Text, string(message.Kind), message.CreatedAt.UnixNano())
	if err != nil && isConstraintError(err) {
		return chaterr.ErrRecordExists
	}
	return err
}

func (r *MessageRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, from_name, to_name, text, type, time FROM messages WHERE id = ?`, id.String())
	message, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Message{}, chaterr.ErrRecordNotFound
	}
	return message, err
}

// Update rewrites the mutable fields of a message.
func (r *MessageRepository) Update(ctx context.Context, message domain.Message) error {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE messages SET to_name = ?, text = ?, type = ? WHERE id = ?`,
		message.To, message.Text, string(message.Kind), message.ID.String())
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (r *MessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// FindAll returns the whole log in chronological order.
func (r *MessageRepository) FindAll(ctx context.Context) ([]domain.Message, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, from_name, to_name, text, type, time FROM messages ORDER BY time ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func scanMessage(row scanner) (domain.Message, error) {
	var (
		message   domain.Message
		id, kind  string
		createdAt int64
	)
	if err := row.Scan(&id, &message.From, &message.To, &message.Text, &kind, &createdAt); err != nil {
		return domain.Message{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Message{}, err
	}
	message.ID = parsed
	message.Kind = domain.Kind(kind)
	message.CreatedAt = time.Unix(0, createdAt).UTC()
	return message, nil
}
