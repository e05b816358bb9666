package main

import (
	"context"
	"fmt"
	"log/slog"

	"bate-papo/infrastructure/storage"
	"bate-papo/infrastructure/storage/sqlite"
	"bate-papo/internal"
	"bate-papo/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
)

const inspectEndpoint = "/inspect"

type openedStore struct {
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	close        func()
}

func openStore(ctx context.Context, config internal.Config, logger *slog.Logger) (openedStore, error) {
	switch config.StoreDriver {
	case internal.StoreSQLite:
		store, err := sqlite.NewStore(config.SQLiteFilepath)
		if err != nil {
			return openedStore{}, fmt.Errorf("database opening failed: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return openedStore{}, fmt.Errorf("database migration failed: %w", err)
		}
		return openedStore{
			participants: sqlite.NewParticipantRepository(store),
			messages:     sqlite.NewMessageRepository(store),
			close: func() {
				logger.Info("Closing SQLite...")
				_ = store.Close()
			},
		}, nil
	default:
		db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
		if err != nil {
			return openedStore{}, fmt.Errorf("database opening failed: %w", err)
		}
		if debugEnabled(ctx, logger) {
			url := fmt.Sprintf("http://localhost:%d%s", config.DebugPort, inspectEndpoint)
			logger.Info("Debug Badger inspector available", "url", url)
			database.StartDebugServer(db, config.DebugPort, inspectEndpoint, storage.InspectMapper)
		}
		return openedStore{
			participants: storage.NewParticipantRepository(db, logger),
			messages:     storage.NewMessageRepository(db, logger),
			close: func() {
				logger.Info("Closing BadgerDB...")
				_ = db.Close()
			},
		}, nil
	}
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if debugEnabled(ctx, logger) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
