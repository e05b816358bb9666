// Package tui is the terminal front-end of the chat, built on bubbletea.
package tui

import (
	"context"
	"time"

	"bate-papo/client"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	pollInterval   = 2 * time.Second
	requestTimeout = 5 * time.Second
	historySize    = 100
)

// API is the part of the HTTP client the terminal needs.
type API interface {
	User() string
	Join(ctx context.Context) (client.Participant, error)
	Participants(ctx context.Context) ([]client.Participant, error)
	Heartbeat(ctx context.Context) error
	Say(ctx context.Context, text string) (client.Message, error)
	Whisper(ctx context.Context, to, text string) (client.Message, error)
	Messages(ctx context.Context, limit int) ([]client.Message, error)
	Delete(ctx context.Context, id string) error
}

type Model struct {
	api          API
	server       string
	keepAlive    time.Duration
	textInput    textinput.Model
	messages     []client.Message
	participants []client.Participant
	notices      []string
	joined       bool
	err          error
}

func NewModel(api API, server string, keepAlive time.Duration) *Model {
	input := textinput.New()
	input.Placeholder = "Type a message, /w <name> <text> to whisper, /quit to leave"
	input.CharLimit = 0
	input.Prompt = "> "
	input.Focus()

	if keepAlive <= 0 {
		keepAlive = client.DefaultKeepAlive
	}
	return &Model{
		api:       api,
		server:    server,
		keepAlive: keepAlive,
		textInput: input,
		messages:  make([]client.Message, 0, historySize),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.joinCmd())
}
