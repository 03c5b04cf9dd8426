// Package gateway is the boundary to the durable message store. The core
// only appends and queries through it, never mutates.
package gateway

import (
	"context"

	"github.com/mindmend/sessiond/internal/domain"
)

type MessageGateway interface {
	// Append persists one message and returns it with ID and CreatedAt set.
	Append(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error)
	// History returns the conversation between two participants ordered by
	// creation time ascending.
	History(ctx context.Context, caller, partner domain.ParticipantID) ([]domain.ChatMessage, error)
}

type bearerKey struct{}

// WithBearer carries the authenticated participant's token through the call
// so the HTTP gateway acts as that participant, not as the service.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

func bearerFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerKey{}).(string)
	return token, ok && token != ""
}
