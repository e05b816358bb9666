package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/mama165/sdk-go/database"
)

// RecordView is a human readable summary of one badger entry.
type RecordView struct {
	Kind   string
	At     time.Time
	Detail string
}

// Describe decodes a raw entry by its key prefix.
func Describe(key string, val []byte) (RecordView, error) {
	switch {
	case strings.HasPrefix(key, participantPrefix):
		p, err := DecodeParticipant(val)
		if err != nil {
			return RecordView{}, err
		}
		return RecordView{
			Kind:   "PARTICIPANT",
			At:     p.LastSeen,
			Detail: fmt.Sprintf("%s (joined %s)", p.Name, p.JoinedAt.Format(time.TimeOnly)),
		}, nil
	case strings.HasPrefix(key, messageIndex):
		return RecordView{Kind: "INDEX", Detail: string(val)}, nil
	case strings.HasPrefix(key, messagePrefix):
		m, err := DecodeMessage(val)
		if err != nil {
			return RecordView{}, err
		}
		return RecordView{
			Kind:   strings.ToUpper(string(m.Kind)),
			At:     m.CreatedAt,
			Detail: fmt.Sprintf("%s -> %s: %s", m.From, m.To, m.Text),
		}, nil
	default:
		return RecordView{}, fmt.Errorf("unknown key prefix: %s", key)
	}
}

// InspectMapper renders chat records for the badger debug inspector.
func InspectMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	view, err := Describe(key, val)
	if err != nil {
		row.Detail = "Error: " + err.Error()
		return row
	}
	row.Type = view.Kind
	row.Detail = view.Detail
	return row
}
