package server

import (
	"bate-papo/domain"

	"github.com/samber/lo"
)

// UserHeader carries the caller identity. It is trusted as sent.
const UserHeader = "user"

const timeLayout = "15:04:05"

type joinRequest struct {
	Name string `json:"name"`
}

type messageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

func (r messageRequest) draft() domain.MessageDraft {
	return domain.MessageDraft{To: r.To, Text: r.Text, Kind: domain.Kind(r.Type)}
}

// ParticipantResponse is the wire shape of a participant. LastStatus is unix milliseconds.
type ParticipantResponse struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

// MessageResponse is the wire shape of a message. Time is rendered HH:MM:SS.
type MessageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

type errorResponse struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}

func toParticipantResponse(p domain.Participant) ParticipantResponse {
	return ParticipantResponse{Name: p.Name, LastStatus: p.LastSeen.UnixMilli()}
}

func toMessageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:   m.ID.String(),
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: string(m.Kind),
		Time: m.CreatedAt.Format(timeLayout),
	}
}

func toParticipantResponses(participants []domain.Participant) []ParticipantResponse {
	return lo.Map(participants, func(p domain.Participant, _ int) ParticipantResponse {
		return toParticipantResponse(p)
	})
}

func toMessageResponses(messages []domain.Message) []MessageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) MessageResponse {
		return toMessageResponse(m)
	})
}
