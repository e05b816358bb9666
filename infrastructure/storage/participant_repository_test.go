package storage

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"bate-papo/domain"
	chaterr "bate-papo/errors"

	"github.com/stretchr/testify/require"
)

func Test_Insert_Participant_Twice(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewParticipantRepository(openBadger(t), slog.Default())
	now := time.Now().UTC()

	// Given Alice is registered
	req.NoError(repository.Insert(ctx, domain.NewParticipant("Alice", now)))

	// When Alice is inserted again
	err := repository.Insert(ctx, domain.NewParticipant("Alice", now.Add(time.Second)))

	// Then the duplicate is refused and the first record is untouched
	req.ErrorIs(err, chaterr.ErrRecordExists)
	found, err := repository.FindByName(ctx, "Alice")
	req.NoError(err)
	req.Equal(now, found.LastSeen)
}

func Test_Names_Are_Case_Sensitive(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewParticipantRepository(openBadger(t), slog.Default())
	now := time.Now().UTC()

	req.NoError(repository.Insert(ctx, domain.NewParticipant("alice", now)))
	req.NoError(repository.Insert(ctx, domain.NewParticipant("Alice", now)))
}

func Test_Participants_Listed_In_Join_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewParticipantRepository(openBadger(t), slog.Default())
	now := time.Now().UTC()

	req.NoError(repository.Insert(ctx, domain.NewParticipant("Zoe", now)))
	req.NoError(repository.Insert(ctx, domain.NewParticipant("Bob", now.Add(time.Second))))
	req.NoError(repository.Insert(ctx, domain.NewParticipant("Alice", now.Add(2*time.Second))))

	participants, err := repository.FindAll(ctx)
	req.NoError(err)
	req.Equal([]string{"Zoe", "Bob", "Alice"}, names(participants))
}

func Test_Update_And_Delete_Participant(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewParticipantRepository(openBadger(t), slog.Default())
	now := time.Now().UTC()
	req.NoError(repository.Insert(ctx, domain.NewParticipant("Alice", now)))

	// When a heartbeat is recorded
	later := now.Add(5 * time.Second)
	req.NoError(repository.UpdateLastSeen(ctx, "Alice", later))

	// Then only LastSeen moves
	found, err := repository.FindByName(ctx, "Alice")
	req.NoError(err)
	req.Equal(later, found.LastSeen)
	req.Equal(now, found.JoinedAt)

	// When Alice is removed
	req.NoError(repository.Delete(ctx, "Alice"))

	// Then every access reports a missing record
	_, err = repository.FindByName(ctx, "Alice")
	req.ErrorIs(err, chaterr.ErrRecordNotFound)
	req.ErrorIs(repository.UpdateLastSeen(ctx, "Alice", later), chaterr.ErrRecordNotFound)
	req.ErrorIs(repository.Delete(ctx, "Alice"), chaterr.ErrRecordNotFound)
}

func names(participants []domain.Participant) []string {
	out := make([]string, 0, len(participants))
	for _, p := range participants {
		out = append(out, p.Name)
	}
	return out
}
