package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bate-papo/domain"
	chaterr "bate-papo/errors"
)

type ParticipantRepository struct {
	store *Store
}

func NewParticipantRepository(store *Store) *ParticipantRepository {
	return &ParticipantRepository{store: store}
}

// Insert stores a new participant. ErrRecordExists is returned on conflicts.
func (r *ParticipantRepository) Insert(ctx context.Context, participant domain.Participant) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO participants(name, last_status, joined_at) VALUES(?, ?, ?)`,
		participant.Name, participant.LastSeen.UnixNano(), participant.JoinedAt.UnixNano())
	if err != nil {
		if isConstraintError(err) {
			return chaterr.ErrRecordExists
		}
		return err
	}
	return nil
}

func (r *ParticipantRepository) FindByName(ctx context.Context, name string) (domain.Participant, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT name, last_status, joined_at FROM participants WHERE name = ?`, name)
	participant, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Participant{}, chaterr.ErrRecordNotFound
	}
	return participant, err
}

func (r *ParticipantRepository) UpdateLastSeen(ctx context.Context, name string, at time.Time) error {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE participants SET last_status = ? WHERE name = ?`, at.UnixNano(), name)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (r *ParticipantRepository) Delete(ctx context.Context, name string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM participants WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// FindAll returns every participant ordered by join time.
func (r *ParticipantRepository) FindAll(ctx context.Context) ([]domain.Participant, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT name, last_status, joined_at FROM participants ORDER BY joined_at ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	return participants, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row scanner) (domain.Participant, error) {
	var (
		participant        domain.Participant
		lastSeen, joinedAt int64
	)
	if err := row.Scan(&participant.Name, &lastSeen, &joinedAt); err != nil {
		return domain.Participant{}, err
	}
	participant.LastSeen = time.Unix(0, lastSeen).UTC()
	participant.JoinedAt = time.Unix(0, joinedAt).UTC()
	return participant, nil
}

func expectOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return chaterr.ErrRecordNotFound
	}
	return nil
}
