package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatMessage is the only durable entity the core touches. It is append-only:
// the store assigns ID and CreatedAt, nothing ever mutates a persisted row.
type ChatMessage struct {
	ID         uuid.UUID     `json:"id"`
	RoomKey    RoomKey       `json:"roomKey,omitempty"`
	SenderID   ParticipantID `json:"senderId"`
	ReceiverID ParticipantID `json:"receiverId"`
	Content    string        `json:"content"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// PairKey folds the two participants of a conversation into one canonical
// key, so history lookups are symmetric in sender and receiver.
func PairKey(a, b ParticipantID) string {
	if strings.Compare(string(a), string(b)) > 0 {
		a, b = b, a
	}
	return string(a) + ":" + string(b)
}
