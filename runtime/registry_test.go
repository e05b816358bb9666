package runtime_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"bate-papo/domain"
	chaterr "bate-papo/errors"
	"bate-papo/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRegistry_Join_Announces_Entry(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	// When Alice joins
	alice, err := f.engine.Registry.Join(ctx, "  Alice ")

	// Then she is live under her trimmed name
	req.NoError(err)
	req.Equal("Alice", alice.Name)
	req.Equal(startOfDay, alice.LastSeen)
	participants, err := f.engine.Registry.List(ctx)
	req.NoError(err)
	req.Len(participants, 1)
	req.Equal("Alice", participants[0].Name)

	// And the log holds exactly one entry announcement
	messages, err := f.engine.Bus.List(ctx, "", 0)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("Alice", messages[0].From)
	req.Equal(domain.Broadcast, messages[0].To)
	req.Equal(domain.KindStatus, messages[0].Kind)
	req.Equal("Alice entra na sala...", messages[0].Text)

	// When Alice joins a second time
	_, err = f.engine.Registry.Join(ctx, "Alice")

	// Then the name is taken and nothing new is logged
	req.ErrorIs(err, chaterr.ErrNameTaken)
	messages, err = f.engine.Bus.List(ctx, "", 0)
	req.NoError(err)
	req.Len(messages, 1)
}

func TestRegistry_Join_Rejects_Blank_Names(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := f.engine.Registry.Join(context.Background(), name)
		req.ErrorIs(err, chaterr.ErrInvalidName)
		req.ErrorIs(err, chaterr.ErrValidation)
	}
	participants, err := f.engine.Registry.List(context.Background())
	req.NoError(err)
	req.Empty(participants)
}

func TestRegistry_Concurrent_Join_Same_Name(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	const attempts = 20

	// Given many clients racing for the same name
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Registry.Join(ctx, "Alice")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// Then exactly one of them won
	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		req.ErrorIs(err, chaterr.ErrNameTaken)
	}
	req.Equal(1, succeeded)

	// And exactly one entry message was logged
	participants, err := f.engine.Registry.List(ctx)
	req.NoError(err)
	req.Len(participants, 1)
	messages, err := f.engine.Bus.List(ctx, "", 0)
	req.NoError(err)
	req.Len(messages, 1)
}

func TestRegistry_Join_Rolls_Back_When_Announcement_Fails(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	f := newFixture(t, withMessages(messages))

	// Given a log refusing every write
	messages.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(fmt.Errorf("disk full")).Times(1)

	// When Alice joins
	_, err := f.engine.Registry.Join(ctx, "Alice")

	// Then the join fails as a store failure and Alice is not live
	req.ErrorIs(err, chaterr.ErrStoreFailure)
	live, err := f.engine.Registry.IsLive(ctx, "Alice")
	req.NoError(err)
	req.False(live)

	// And the name is free again
	messages.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	_, err = f.engine.Registry.Join(ctx, "Alice")
	req.NoError(err)
}

func TestRegistry_Join_Store_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	f := newFixture(t, withParticipants(participants))

	participants.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(fmt.Errorf("io error"))

	_, err := f.engine.Registry.Join(context.Background(), "Alice")

	req.ErrorIs(err, chaterr.ErrStoreFailure)
	req.NotErrorIs(err, chaterr.ErrNameTaken)
}

func TestRegistry_Heartbeat(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Registry.Join(ctx, "Alice")
	req.NoError(err)

	// When Alice signals liveness later on
	f.clock.Add(7 * time.Second)
	req.NoError(f.engine.Registry.Heartbeat(ctx, "Alice"))

	// Then her last seen time moved forward
	participants, err := f.engine.Registry.List(ctx)
	req.NoError(err)
	req.Equal(startOfDay.Add(7*time.Second), participants[0].LastSeen)
	req.Equal(startOfDay, participants[0].JoinedAt)
}

func TestRegistry_Heartbeat_Unknown_Participant(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.ErrorIs(f.engine.Registry.Heartbeat(context.Background(), "Bob"), chaterr.ErrUnknownParticipant)
	req.ErrorIs(f.engine.Registry.Heartbeat(context.Background(), " "), chaterr.ErrUnknownParticipant)
}

func TestRegistry_List_In_Join_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	for _, name := range []string{"Clara", "Alice", "Bob"} {
		_, err := f.engine.Registry.Join(ctx, name)
		req.NoError(err)
		f.clock.Add(time.Second)
	}

	participants, err := f.engine.Registry.List(ctx)
	req.NoError(err)
	req.Equal([]string{"Clara", "Alice", "Bob"}, []string{participants[0].Name, participants[1].Name, participants[2].Name})
}

func TestRegistry_Evict_Heartbeat_Wins(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Registry.Join(ctx, "Alice")
	req.NoError(err)

	// Given Alice looked expired to a sweep snapshot
	f.clock.Add(livenessTimeout + time.Second)

	// When her heartbeat lands before the eviction
	req.NoError(f.engine.Registry.Heartbeat(ctx, "Alice"))
	evicted, err := f.engine.Registry.Evict(ctx, "Alice", livenessTimeout)

	// Then she survives
	req.NoError(err)
	req.False(evicted)
	live, err := f.engine.Registry.IsLive(ctx, "Alice")
	req.NoError(err)
	req.True(live)
}

func TestRegistry_Evict_Unknown_Participant(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	evicted, err := f.engine.Registry.Evict(context.Background(), "Ghost", livenessTimeout)

	req.NoError(err)
	req.False(evicted)
}

func TestRegistry_Evict_Survives_Announcement_Failure(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	f := newFixture(t, withMessages(messages))

	// Given Alice joined and then went silent
	gomock.InOrder(
		messages.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil),
		messages.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(fmt.Errorf("disk full")),
	)
	_, err := f.engine.Registry.Join(ctx, "Alice")
	req.NoError(err)
	f.clock.Add(livenessTimeout + time.Nanosecond)

	// When she is evicted but the departure cannot be logged
	evicted, err := f.engine.Registry.Evict(ctx, "Alice", livenessTimeout)

	// Then the eviction still holds
	req.NoError(err)
	req.True(evicted)
	req.ErrorIs(f.engine.Registry.Heartbeat(ctx, "Alice"), chaterr.ErrUnknownParticipant)
}

func TestRegistry_WhileLive(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.engine.Registry.Join(ctx, "Alice")
	req.NoError(err)

	called := false
	req.NoError(f.engine.Registry.WhileLive(ctx, "Alice", func(ctx context.Context) error {
		called = true
		return nil
	}))
	req.True(called)

	err = f.engine.Registry.WhileLive(ctx, "Bob", func(ctx context.Context) error {
		req.Fail("must not run for an unknown participant")
		return nil
	})
	req.ErrorIs(err, chaterr.ErrUnknownParticipant)
}
