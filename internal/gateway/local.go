package gateway

import (
	"context"

	"github.com/mindmend/sessiond/internal/domain"
	"github.com/mindmend/sessiond/internal/store"
)

// LocalGateway serves the gateway contract from the embedded message store,
// for standalone deployments that have no platform API to delegate to.
type LocalGateway struct {
	Store *store.MessageStore
}

func (g *LocalGateway) Append(_ context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	return g.Store.Append(msg)
}

func (g *LocalGateway) History(_ context.Context, caller, partner domain.ParticipantID) ([]domain.ChatMessage, error) {
	return g.Store.History(caller, partner)
}
