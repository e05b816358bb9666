package tui

import (
	"fmt"
	"hash/fnv"
	"strings"

	"bate-papo/client"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("109")).MarginTop(1)
	connectedStyle   = statusStyle.Copy().Foreground(lipgloss.Color("42")).Bold(true)
	connectingStyle  = statusStyle.Copy().Foreground(lipgloss.Color("178")).Italic(true)
	errorStyle       = statusStyle.Copy().Foreground(lipgloss.Color("196")).Bold(true)
	messageBoxStyle  = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(1, 2).MarginTop(1)
	inputBoxStyle    = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1).MarginTop(1)
	timestampStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	statusLineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	privateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("177")).Italic(true)
	hintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).MarginTop(1)
	dividerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("237")).Render(" ┃ ")
	userColorPalette = []lipgloss.Color{"45", "81", "141", "98", "63", "135", "32"}
)

func (m *Model) View() string {
	header := headerStyle.Render(strings.Join([]string{
		"Bate-papo",
		fmt.Sprintf("User %s", m.api.User()),
		fmt.Sprintf("Server %s", m.server),
	}, dividerStyle))

	var status string
	switch {
	case m.err != nil:
		status = errorStyle.Render("Error: " + m.err.Error())
	case m.joined:
		online := lo.Map(m.participants, func(p client.Participant, _ int) string { return p.Name })
		status = connectedStyle.Render(fmt.Sprintf("Online (%d): %s", len(online), strings.Join(online, ", ")))
	default:
		status = connectingStyle.Render("Joining…")
	}

	lines := lo.Map(m.messages, func(msg client.Message, _ int) string { return m.renderMessage(msg) })
	if len(lines) == 0 {
		lines = append(lines, statusLineStyle.Render("No messages yet. Say hi and start the conversation."))
	}

	sections := []string{header, status, messageBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))}
	for _, n := range m.notices {
		sections = append(sections, statusLineStyle.Render(n))
	}
	sections = append(sections, inputBoxStyle.Render(m.textInput.View()), hintStyle.Render("Esc or /quit to leave"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderMessage(msg client.Message) string {
	timestamp := timestampStyle.Render(fmt.Sprintf("[%s]", msg.Time))
	switch msg.Type {
	case "status":
		return lipgloss.JoinHorizontal(lipgloss.Left, timestamp, " ", statusLineStyle.Render(msg.Text))
	case "private_message":
		body := privateStyle.Render(fmt.Sprintf("%s → %s: %s", msg.From, msg.To, msg.Text))
		return lipgloss.JoinHorizontal(lipgloss.Left, timestamp, " ", body)
	default:
		name := lipgloss.NewStyle().Bold(true).Foreground(colorFor(msg.From)).Render(msg.From)
		return lipgloss.JoinHorizontal(lipgloss.Left, timestamp, " ", name, ": ", msg.Text)
	}
}

// colorFor keeps one colour per name across refreshes.
func colorFor(name string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return userColorPalette[h.Sum32()%uint32(len(userColorPalette))]
}
