package tui

import (
	"net/http"
	"strings"

	"bate-papo/client"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := message.(type) {
	case tea.KeyMsg:
		if typed.Type == tea.KeyCtrlC || typed.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if typed.Type == tea.KeyEnter {
			line := strings.TrimSpace(m.textInput.Value())
			m.textInput.SetValue("")
			switch {
			case line == "":
				return m, nil
			case line == "/quit" || line == "/exit":
				return m, tea.Quit
			case !m.joined:
				m.notice("Not connected yet.")
				return m, nil
			}
			return m, m.sendCmd(line)
		}
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(typed)
		return m, cmd

	case joinedMsg:
		if typed.err != nil {
			m.err = typed.err
			m.notice(describe(typed.err))
			return m, nil
		}
		m.joined = true
		return m, tea.Batch(m.refreshCmd(), schedulePoll(), m.scheduleHeartbeat())

	case pollTickMsg:
		return m, tea.Batch(m.refreshCmd(), schedulePoll())

	case beatTickMsg:
		return m, tea.Batch(m.heartbeatCmd(), m.scheduleHeartbeat())

	case heartbeatMsg:
		if client.StatusOf(typed.err) == http.StatusNotFound {
			m.joined = false
			m.err = typed.err
			m.notice(describe(typed.err))
			return m, tea.Quit
		}
		return m, nil

	case refreshMsg:
		if typed.err != nil {
			m.err = typed.err
			return m, nil
		}
		m.err = nil
		m.messages = typed.messages
		m.participants = typed.participants
		return m, nil

	case sentMsg:
		if typed.err != nil {
			m.notice(describe(typed.err))
			return m, nil
		}
		return m, m.refreshCmd()
	}
	return m, nil
}

func (m *Model) notice(text string) {
	m.notices = append(m.notices, text)
	if len(m.notices) > 3 {
		m.notices = m.notices[len(m.notices)-3:]
	}
}
