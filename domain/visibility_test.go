package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func message(from, to string, kind Kind) Message {
	return Message{ID: uuid.New(), From: from, To: to, Text: "hi", Kind: kind, CreatedAt: time.Now()}
}

func TestVisible_Private_Message_Only_For_Both_Ends(t *testing.T) {
	req := require.New(t)

	// Given a private message from Alice to Bob
	private := message("Alice", "Bob", KindPrivateMessage)

	// Then only Alice and Bob can read it
	req.True(Visible("Alice", private))
	req.True(Visible("Bob", private))
	req.False(Visible("Carol", private))
	req.False(Visible("", private))
}

func TestVisible_Public_And_Status_For_Everyone(t *testing.T) {
	req := require.New(t)
	req.True(Visible("Carol", message("Alice", Broadcast, KindMessage)))
	req.True(Visible("", message("Alice", Broadcast, KindStatus)))
	req.False(Visible("Alice", message("Alice", Broadcast, Kind("unknown"))))
}

func TestVisibleTo_Preserves_Order(t *testing.T) {
	req := require.New(t)
	m1 := message("Alice", Broadcast, KindStatus)
	m2 := message("Alice", "Bob", KindPrivateMessage)
	m3 := message("Bob", Broadcast, KindMessage)
	m4 := message("Carol", "Bob", KindPrivateMessage)

	req.Equal([]Message{m1, m3}, VisibleTo("Dave", []Message{m1, m2, m3, m4}))
	req.Equal([]Message{m1, m2, m3, m4}, VisibleTo("Bob", []Message{m1, m2, m3, m4}))
	req.Equal([]Message{m1, m2, m3}, VisibleTo("Alice", []Message{m1, m2, m3, m4}))
}

func TestTail(t *testing.T) {
	m1 := message("Alice", Broadcast, KindMessage)
	m2 := message("Bob", Broadcast, KindMessage)
	m3 := message("Carol", Broadcast, KindMessage)
	all := []Message{m1, m2, m3}

	tests := []struct {
		name     string
		limit    int
		expected []Message
	}{
		{name: "no limit", limit: 0, expected: all},
		{name: "negative limit", limit: -3, expected: all},
		{name: "limit above length", limit: 10, expected: all},
		{name: "last two", limit: 2, expected: []Message{m2, m3}},
		{name: "last one", limit: 1, expected: []Message{m3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Tail(all, tt.limit))
		})
	}
}

func TestTail_Applied_After_Filter(t *testing.T) {
	req := require.New(t)

	// Given a public message followed by a private one Carol cannot read
	public := message("Alice", Broadcast, KindMessage)
	private := message("Alice", "Bob", KindPrivateMessage)

	// When Carol asks for the last message
	tail := Tail(VisibleTo("Carol", []Message{public, private}), 1)

	// Then the invisible message does not displace the visible one
	req.Equal([]Message{public}, tail)
}
