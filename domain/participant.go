// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"strings"
	"time"

	"bate-papo/errors"
)

// Participant is a live presence in the chat, keyed by its unique Name.
type Participant struct {
	Name     string
	LastSeen time.Time
	JoinedAt time.Time
}

// NewParticipant registers a presence seen at now.
func NewParticipant(name string, now time.Time) Participant {
	return Participant{Name: name, LastSeen: now, JoinedAt: now}
}

// Expired reports whether the last heartbeat is strictly older than timeout.
func (p Participant) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(p.LastSeen) > timeout
}

// NormalizeName trims the name and rejects blank values.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.ErrInvalidName
	}
	return trimmed, nil
}

// EntryText is the status announcement emitted when a participant joins.
func EntryText(name string) string {
	return name + " entra na sala..."
}

// DepartureText is the status announcement emitted when a participant is evicted.
func DepartureText(name string) string {
	return name + " sai da sala..."
}
