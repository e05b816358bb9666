package storage

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"bate-papo/domain"
	chaterr "bate-papo/errors"

	"github.com/dgraph-io/badger/v4"
)

type ParticipantRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewParticipantRepository(db *badger.DB, log *slog.Logger) *ParticipantRepository {
	return &ParticipantRepository{db: db, log: log}
}

// Insert stores a new participant. The existence check and the write share one transaction.
func (r *ParticipantRepository) Insert(ctx context.Context, participant domain.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeParticipant(participant)
	if err != nil {
		return err
	}
	key := participantKey(participant.Name)
	return r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return chaterr.ErrRecordExists
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, data)
	})
}

func (r *ParticipantRepository) FindByName(ctx context.Context, name string) (domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return domain.Participant{}, err
	}
	var participant domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		p, err := getParticipant(txn, name)
		participant = p
		return err
	})
	return participant, err
}

func (r *ParticipantRepository) UpdateLastSeen(ctx context.Context, name string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		participant, err := getParticipant(txn, name)
		if err != nil {
			return err
		}
		participant.LastSeen = at
		data, err := EncodeParticipant(participant)
		if err != nil {
			return err
		}
		return txn.Set(participantKey(name), data)
	})
}

func (r *ParticipantRepository) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := getParticipant(txn, name); err != nil {
			return err
		}
		return txn.Delete(participantKey(name))
	})
}

// FindAll scans the participant prefix and orders the result by join time.
func (r *ParticipantRepository) FindAll(ctx context.Context) ([]domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var participants []domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(participantPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				p, err := DecodeParticipant(val)
				if err != nil {
					return err
				}
				participants = append(participants, p)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(participants, func(a, b domain.Participant) int {
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	r.log.Debug("Participants loaded", "count", len(participants))
	return participants, nil
}

func getParticipant(txn *badger.Txn, name string) (domain.Participant, error) {
	item, err := txn.Get(participantKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Participant{}, chaterr.ErrRecordNotFound
	}
	if err != nil {
		return domain.Participant{}, err
	}
	var participant domain.Participant
	err = item.Value(func(val []byte) error {
		p, err := DecodeParticipant(val)
		participant = p
		return err
	})
	return participant, err
}
