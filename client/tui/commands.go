package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bate-papo/client"

	tea "github.com/charmbracelet/bubbletea"
)

type (
	joinedMsg  struct{ err error }
	refreshMsg struct {
		messages     []client.Message
		participants []client.Participant
		err          error
	}
	sentMsg      struct{ err error }
	pollTickMsg  struct{}
	beatTickMsg  struct{}
	heartbeatMsg struct{ err error }
)

func (m *Model) joinCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := m.api.Join(ctx)
		return joinedMsg{err: err}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		messages, err := m.api.Messages(ctx, historySize)
		if err != nil {
			return refreshMsg{err: err}
		}
		participants, err := m.api.Participants(ctx)
		return refreshMsg{messages: messages, participants: participants, err: err}
	}
}

func (m *Model) heartbeatCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return heartbeatMsg{err: m.api.Heartbeat(ctx)}
	}
}

// sendCmd interprets one input line. Plain text is public, "/w name text" whispers,
// "/del id" deletes one of our messages.
func (m *Model) sendCmd(line string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		switch {
		case strings.HasPrefix(line, "/w "):
			to, text, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "/w ")), " ")
			if !ok {
				return sentMsg{err: fmt.Errorf("usage: /w <name> <text>")}
			}
			_, err := m.api.Whisper(ctx, to, text)
			return sentMsg{err: err}
		case strings.HasPrefix(line, "/del "):
			return sentMsg{err: m.api.Delete(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/del ")))}
		default:
			_, err := m.api.Say(ctx, line)
			return sentMsg{err: err}
		}
	}
}

func schedulePoll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollTickMsg{} })
}

func (m *Model) scheduleHeartbeat() tea.Cmd {
	return tea.Tick(m.keepAlive, func(time.Time) tea.Msg { return beatTickMsg{} })
}

func describe(err error) string {
	switch client.StatusOf(err) {
	case http.StatusConflict:
		return "That name is already taken."
	case http.StatusNotFound:
		return "The server no longer knows you, you were disconnected."
	case http.StatusUnprocessableEntity:
		return "Rejected: " + err.Error()
	case http.StatusTooManyRequests:
		return "Slow down."
	default:
		return err.Error()
	}
}
