package runtime_test

import (
	"log/slog"
	"testing"
	"time"

	"bate-papo/infrastructure/storage"
	"bate-papo/repositories"
	"bate-papo/runtime"

	"github.com/benbjohnson/clock"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const (
	sweepInterval   = 15 * time.Second
	livenessTimeout = 10 * time.Second
)

var startOfDay = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type fixture struct {
	clock        *clock.Mock
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	engine       *runtime.Engine
}

type option func(f *fixture)

func withMessages(messages repositories.IMessageRepository) option {
	return func(f *fixture) { f.messages = messages }
}

func withParticipants(participants repositories.IParticipantRepository) option {
	return func(f *fixture) { f.participants = participants }
}

// newFixture builds an engine over an in-memory badger and a mocked clock.
func newFixture(t *testing.T, opts ...option) *fixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock := clock.NewMock()
	mock.Set(startOfDay)
	f := &fixture{
		clock:        mock,
		participants: storage.NewParticipantRepository(db, log),
		messages:     storage.NewMessageRepository(db, log),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.engine = runtime.NewEngine(log, mock, f.participants, f.messages, nil, nil, runtime.EngineConfig{
		StoreTimeout:    time.Second,
		SweepInterval:   sweepInterval,
		LivenessTimeout: livenessTimeout,
		RestartInterval: 10 * time.Millisecond,
	})
	return f
}
