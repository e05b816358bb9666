package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"bate-papo/domain"

	"github.com/google/uuid"
)

const (
	participantPrefix = "participant:"
	messagePrefix     = "msg:"
	messageIndex      = "msgidx:"
)

// ParticipantRecord is the persisted shape of a participant.
// LastStatus and JoinedAt are unix nanoseconds.
type ParticipantRecord struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
	JoinedAt   int64  `json:"joinedAt"`
}

// MessageRecord is the persisted shape of a message. Time is unix nanoseconds.
type MessageRecord struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time int64  `json:"time"`
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// messageKey is formatted as "msg:{timestamp_padded}:{uuid}" so a prefix scan
// walks the log chronologically. The 19-digit padding keeps lexicographical order.
func messageKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", messagePrefix, m.CreatedAt.UnixNano(), m.ID))
}

func messageIndexKey(id uuid.UUID) []byte {
	return []byte(messageIndex + id.String())
}

func EncodeParticipant(p domain.Participant) ([]byte, error) {
	return json.Marshal(ParticipantRecord{
		Name:       p.Name,
		LastStatus: p.LastSeen.UnixNano(),
		JoinedAt:   p.JoinedAt.UnixNano(),
	})
}

func DecodeParticipant(data []byte) (domain.Participant, error) {
	var record ParticipantRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.Participant{}, fmt.Errorf("decode participant: %w", err)
	}
	return domain.Participant{
		Name:     record.Name,
		LastSeen: time.Unix(0, record.LastStatus).UTC(),
		JoinedAt: time.Unix(0, record.JoinedAt).UTC(),
	}, nil
}

func EncodeMessage(m domain.Message) ([]byte, error) {
	return json.Marshal(MessageRecord{
		ID:   m.ID.String(),
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: string(m.Kind),
		Time: m.CreatedAt.UnixNano(),
	})
}

func DecodeMessage(data []byte) (domain.Message, error) {
	var record MessageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.Message{}, fmt.Errorf("decode message: %w", err)
	}
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("decode message id: %w", err)
	}
	return domain.Message{
		ID:        id,
		From:      record.From,
		To:        record.To,
		Text:      record.Text,
		Kind:      domain.Kind(record.Type),
		CreatedAt: time.Unix(0, record.Time).UTC(),
	}, nil
}
