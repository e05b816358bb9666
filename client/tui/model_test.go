package tui

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"bate-papo/client"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu           sync.Mutex
	user         string
	joinErr      error
	heartbeatErr error
	said         []string
	whispers     [][2]string
	deleted      []string
	messages     []client.Message
	participants []client.Participant
}

func (f *fakeAPI) User() string { return f.user }

func (f *fakeAPI) Join(context.Context) (client.Participant, error) {
	return client.Participant{Name: f.user}, f.joinErr
}

func (f *fakeAPI) Participants(context.Context) ([]client.Participant, error) {
	return f.participants, nil
}

func (f *fakeAPI) Heartbeat(context.Context) error { return f.heartbeatErr }

func (f *fakeAPI) Say(_ context.Context, text string) (client.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.said = append(f.said, text)
	return client.Message{From: f.user, To: "all", Text: text, Type: "message"}, nil
}

func (f *fakeAPI) Whisper(_ context.Context, to, text string) (client.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whispers = append(f.whispers, [2]string{to, text})
	return client.Message{From: f.user, To: to, Text: text, Type: "private_message"}, nil
}

func (f *fakeAPI) Messages(context.Context, int) ([]client.Message, error) {
	return f.messages, nil
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func joined(t *testing.T, api *fakeAPI) *Model {
	m := NewModel(api, "http://localhost:5000", 0)
	_, _ = m.Update(joinedMsg{})
	require.True(t, m.joined)
	return m
}

func typeLine(m *Model, line string) tea.Cmd {
	m.textInput.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestModel_Join_Failure_Is_Shown(t *testing.T) {
	req := require.New(t)
	// Given a name someone else already holds
	api := &fakeAPI{user: "Ana", joinErr: &client.APIError{Status: http.StatusConflict, Message: "name already taken"}}
	m := NewModel(api, "http://localhost:5000", 0)

	// When the join answer comes back
	msg := m.joinCmd()()
	_, _ = m.Update(msg)

	// Then the model stays disconnected and tells why
	req.False(m.joined)
	req.Contains(m.notices, "That name is already taken.")
	req.Contains(m.View(), "Error:")
}

func TestModel_Enter_Says_And_Whispers(t *testing.T) {
	req := require.New(t)
	// Given a joined model
	api := &fakeAPI{user: "Ana"}
	m := joined(t, api)

	// When a plain line and a whisper are typed
	sayCmd := typeLine(m, "hello")
	whisperCmd := typeLine(m, "/w Bia just you")
	deleteCmd := typeLine(m, "/del 42")
	req.NotNil(sayCmd)
	req.NotNil(whisperCmd)
	req.NotNil(deleteCmd)
	_, _ = m.Update(sayCmd())
	_, _ = m.Update(whisperCmd())
	_, _ = m.Update(deleteCmd())

	// Then each went through the matching call and the input is cleared
	req.Equal([]string{"hello"}, api.said)
	req.Equal([][2]string{{"Bia", "just you"}}, api.whispers)
	req.Equal([]string{"42"}, api.deleted)
	req.Empty(m.textInput.Value())
}

func TestModel_Malformed_Whisper(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{user: "Ana"}
	m := joined(t, api)

	_, _ = m.Update(typeLine(m, "/w Bia")())

	req.Empty(api.whispers)
	req.Contains(m.notices, "usage: /w <name> <text>")
}

func TestModel_Blank_Line_Is_Ignored(t *testing.T) {
	req := require.New(t)
	api := &fakeAPI{user: "Ana"}
	m := joined(t, api)

	req.Nil(typeLine(m, "   "))
	req.Empty(api.said)
}

func TestModel_Refresh_Renders_Conversation(t *testing.T) {
	req := require.New(t)
	// Given a server holding a few messages
	api := &fakeAPI{
		user: "Ana",
		messages: []client.Message{
			{From: "Ana", To: "all", Text: "Ana entra na sala...", Type: "status", Time: "09:00:00"},
			{From: "Bia", To: "all", Text: "hi there", Type: "message", Time: "09:00:01"},
			{From: "Bia", To: "Ana", Text: "psst", Type: "private_message", Time: "09:00:02"},
		},
		participants: []client.Participant{{Name: "Ana"}, {Name: "Bia"}},
	}
	m := joined(t, api)

	// When the periodic refresh lands
	_, _ = m.Update(m.refreshCmd()())

	// Then every message and the online list are visible
	view := m.View()
	req.Contains(view, "Ana entra na sala...")
	req.Contains(view, "hi there")
	req.Contains(view, "psst")
	req.Contains(view, "Online (2)")
}

func TestModel_Quits_When_Evicted(t *testing.T) {
	req := require.New(t)
	// Given a participant the server already evicted
	api := &fakeAPI{user: "Ana", heartbeatErr: &client.APIError{Status: http.StatusNotFound, Message: "unknown participant"}}
	m := joined(t, api)

	// When the next heartbeat fails
	_, cmd := m.Update(m.heartbeatCmd()())

	// Then the program stops
	req.NotNil(cmd)
	req.IsType(tea.QuitMsg{}, cmd())
	req.False(m.joined)
}

func TestModel_Quit_Commands(t *testing.T) {
	req := require.New(t)
	m := joined(t, &fakeAPI{user: "Ana"})

	cmd := typeLine(m, "/quit")
	req.IsType(tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	req.IsType(tea.QuitMsg{}, cmd())
}
