package domain

import "github.com/samber/lo"

// Visible reports whether requester may read m.
// Public and status messages are visible to everyone, private ones only to both ends.
func Visible(requester string, m Message) bool {
	switch m.Kind {
	case KindMessage, KindStatus:
		return true
	case KindPrivateMessage:
		return requester == m.From || requester == m.To
	default:
		return false
	}
}

// VisibleTo keeps the messages requester may read, preserving order.
func VisibleTo(requester string, messages []Message) []Message {
	return lo.Filter(messages, func(m Message, _ int) bool {
		return Visible(requester, m)
	})
}

// Tail returns the last limit messages. A limit <= 0 returns everything.
func Tail(messages []Message, limit int) []Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return lo.Subset(messages, -limit, uint(limit))
}
