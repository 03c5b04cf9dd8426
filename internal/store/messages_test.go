package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mindmend/sessiond/internal/domain"
)

func openTestStore(t *testing.T) *MessageStore {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMessageStore_AppendAssignsIDAndTime(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	stored, err := s.Append(domain.ChatMessage{
		RoomKey:    "appt-42",
		SenderID:   "u1",
		ReceiverID: "t1",
		Content:    "hello",
	})
	req.NoError(err)
	req.NotZero(stored.ID)
	req.False(stored.CreatedAt.IsZero())
	req.Equal("hello", stored.Content)
}

func TestMessageStore_HistoryOrderedAscending(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	contents := []string{"one", "two", "three", "four"}
	for i, c := range contents {
		sender, receiver := domain.ParticipantID("u1"), domain.ParticipantID("t1")
		if i%2 == 1 {
			sender, receiver = receiver, sender
		}
		_, err := s.Append(domain.ChatMessage{SenderID: sender, ReceiverID: receiver, Content: c})
		req.NoError(err)
	}

	history, err := s.History("u1", "t1")
	req.NoError(err)
	req.Len(history, len(contents))
	for i, c := range contents {
		req.Equal(c, history[i].Content)
	}
}

func TestMessageStore_HistorySymmetricInPair(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	_, err := s.Append(domain.ChatMessage{SenderID: "u1", ReceiverID: "t1", Content: "hello"})
	req.NoError(err)

	fromCaller, err := s.History("u1", "t1")
	req.NoError(err)
	fromPartner, err := s.History("t1", "u1")
	req.NoError(err)
	req.Equal(fromCaller, fromPartner)
}

func TestMessageStore_HistoryIsolatesConversations(t *testing.T) {
	req := require.New(t)
	s := openTestStore(t)

	_, err := s.Append(domain.ChatMessage{SenderID: "u1", ReceiverID: "t1", Content: "for t1"})
	req.NoError(err)
	_, err = s.Append(domain.ChatMessage{SenderID: "u1", ReceiverID: "t2", Content: "for t2"})
	req.NoError(err)

	history, err := s.History("u1", "t1")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("for t1", history[0].Content)

	history, err = s.History("u1", "nobody")
	req.NoError(err)
	req.Empty(history)
}
