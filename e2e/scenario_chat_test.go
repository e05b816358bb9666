package e2e

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"bate-papo/client"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type testChatSuite struct {
	BaseHTTPSuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

func (s *testChatSuite) TestConversationFlow() {
	// Unique names keep reruns against the same server independent
	suffix := uuid.NewString()[:8]
	ana := fmt.Sprintf("ana-%s", suffix)
	bia := fmt.Sprintf("bia-%s", suffix)
	caio := fmt.Sprintf("caio-%s", suffix)

	var secretID string

	s.Run("Step 1: Join and refuse a taken name", func() {
		for _, name := range []string{ana, bia, caio} {
			s.WithClient("Join "+name, name, func(ctx context.Context, c *client.Client) {
				p, err := c.Join(ctx)
				s.Require().NoError(err)
				s.Require().Equal(name, p.Name)
			})
		}
		s.WithClient("Join again as "+ana, ana, func(ctx context.Context, c *client.Client) {
			_, err := c.Join(ctx)
			s.Require().Equal(http.StatusConflict, client.StatusOf(err))
		})
	})

	s.Run("Step 2: Public and private messages", func() {
		s.WithClient("Ana says hello", ana, func(ctx context.Context, c *client.Client) {
			_, err := c.Say(ctx, "olá pessoal")
			s.Require().NoError(err)
			secret, err := c.Whisper(ctx, bia, "só para você")
			s.Require().NoError(err)
			secretID = secret.ID
		})
		s.WithClient("Bia reads the whisper", bia, func(ctx context.Context, c *client.Client) {
			messages, err := c.Messages(ctx, 0)
			s.Require().NoError(err)
			s.Require().True(lo.ContainsBy(messages, func(m client.Message) bool { return m.ID == secretID }))
		})
		s.WithClient("Caio cannot see it", caio, func(ctx context.Context, c *client.Client) {
			messages, err := c.Messages(ctx, 0)
			s.Require().NoError(err)
			s.Require().False(lo.ContainsBy(messages, func(m client.Message) bool { return m.ID == secretID }))
			s.Require().True(lo.ContainsBy(messages, func(m client.Message) bool { return m.Text == "olá pessoal" }))
		})
	})

	s.Run("Step 3: Only the author edits or deletes", func() {
		s.WithClient("Bia tries to delete Ana's whisper", bia, func(ctx context.Context, c *client.Client) {
			err := c.Delete(ctx, secretID)
			s.Require().Equal(http.StatusUnauthorized, client.StatusOf(err))
		})
		s.WithClient("Ana edits then deletes it", ana, func(ctx context.Context, c *client.Client) {
			edited, err := c.Edit(ctx, secretID, bia, "mudei de ideia", "private_message")
			s.Require().NoError(err)
			s.Require().Equal("mudei de ideia", edited.Text)
			s.Require().NoError(c.Delete(ctx, secretID))
			err = c.Delete(ctx, secretID)
			s.Require().Equal(http.StatusNotFound, client.StatusOf(err))
		})
	})

	s.Run("Step 4: A silent participant is swept", func() {
		if testing.Short() {
			s.T().Skip("waits for a full sweep")
		}
		wait := s.Duration(s.Config.LivenessTimeout) + s.Duration(s.Config.SweepInterval) + time.Second
		ctx, cancel := context.WithCancel(context.Background())
		var keepers sync.WaitGroup
		defer func() {
			cancel()
			keepers.Wait()
		}()

		// Ana and Bia keep heartbeating, Caio stays silent
		for _, name := range []string{ana, bia} {
			keepers.Add(1)
			go func() {
				defer keepers.Done()
				_ = s.Client(s.T(), name).KeepAlive(ctx, time.Second)
			}()
		}
		time.Sleep(wait)

		s.WithClient("Caio is gone", caio, func(ctx context.Context, c *client.Client) {
			err := c.Heartbeat(ctx)
			s.Require().Equal(http.StatusNotFound, client.StatusOf(err))
		})
		s.WithClient("Ana saw the departure", ana, func(ctx context.Context, c *client.Client) {
			participants, err := c.Participants(ctx)
			s.Require().NoError(err)
			names := lo.Map(participants, func(p client.Participant, _ int) string { return p.Name })
			s.Require().Contains(names, ana)
			s.Require().NotContains(names, caio)

			messages, err := c.Messages(ctx, 0)
			s.Require().NoError(err)
			s.Require().True(lo.ContainsBy(messages, func(m client.Message) bool {
				return m.Type == "status" && m.From == caio && m.Text == caio+" sai da sala..."
			}))
		})
	})
}
