package storage

import (
	"context"
	"errors"
	"log/slog"

	"bate-papo/domain"
	chaterr "bate-papo/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// MessageRepository keeps the chat log in BadgerDB.
// Each message is stored under its chronological key, and a secondary
// "msgidx:{uuid}" entry points back to it for lookups by id.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

func (r *MessageRepository) Insert(ctx context.Context, message domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeMessage(message)
	if err != nil {
		return err
	}
	key := messageKey(message)
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(messageIndexKey(message.ID), key)
	})
}

func (r *MessageRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	var message domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		_, m, err := getMessage(txn, id)
		message = m
		return err
	})
	return message, err
}

// Update rewrites the message in place. CreatedAt is part of the key and must not change.
func (r *MessageRepository) Update(ctx context.Context, message domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeMessage(message)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key, _, err := getMessage(txn, message.ID)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func (r *MessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key, _, err := getMessage(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIndexKey(id))
	})
}

// FindAll walks the "msg:" prefix. Thanks to the padded timestamp in the key,
// messages come back in log order.
func (r *MessageRepository) FindAll(ctx context.Context) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var messages []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				m, err := DecodeMessage(val)
				if err != nil {
					return err
				}
				messages = append(messages, m)
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
	return messages, nil
}

func getMessage(txn *badger.Txn, id uuid.UUID) ([]byte, domain.Message, error) {
	indexItem, err := txn.Get(messageIndexKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.Message{}, chaterr.ErrRecordNotFound
	}
	if err != nil {
		return nil, domain.Message{}, err
	}
	key, err := indexItem.ValueCopy(nil)
	if err != nil {
		return nil, domain.Message{}, err
	}
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.Message{}, chaterr.ErrRecordNotFound
	}
	if err != nil {
		return nil, domain.Message{}, err
	}
	var message domain.Message
	err = item.Value(func(val []byte) error {
		m, err := DecodeMessage(val)
		message = m
		return err
	})
	return key, message, err
}
