package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/core"
	"github.com/mindmend/sessiond/internal/domain"
	"github.com/mindmend/sessiond/internal/gateway"
)

var validate = validator.New()

type sendRequest struct {
	Content string `validate:"required,max=2000"`
}

// ChatRelay persists a text message, then pushes it live to the peer if one
// is present. Persistence runs in the caller's connection goroutine: reads
// per connection are serial, which keeps per-sender FIFO, and no registry
// lock is held while the gateway call blocks.
type ChatRelay struct {
	Registry *ConnectionRegistry
	Rooms    *RoomRegistry
	Gateway  gateway.MessageGateway
	Notify   EventNotifier
}

// Send validates, appends via the gateway and attempts live delivery.
// Delivery failure is not an error: persistence already succeeded, so the
// message surfaces on the next history query. receiver may be empty, in
// which case it resolves to the current peer.
func (c *ChatRelay) Send(ctx context.Context, from core.ConnID, receiver domain.ParticipantID, content string) (domain.ChatMessage, error) {
	if err := validate.Struct(sendRequest{Content: content}); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	conn, ok := c.Registry.Lookup(from)
	if !ok {
		return domain.ChatMessage{}, domain.ErrNotMember
	}
	key, ok := c.Registry.RoomOf(from)
	if !ok {
		return domain.ChatMessage{}, domain.ErrNotMember
	}
	room, ok := c.Rooms.Get(key)
	if !ok || !room.IsMember(from) {
		return domain.ChatMessage{}, domain.ErrNotMember
	}

	peer, hasPeer := room.PeerOf(from)
	if receiver == "" {
		if !hasPeer {
			return domain.ChatMessage{}, fmt.Errorf("%w: no receiver and no peer present", domain.ErrValidation)
		}
		receiver = peer.Identity.ParticipantID
	}

	stored, err := c.Gateway.Append(ctx, domain.ChatMessage{
		RoomKey:    key,
		SenderID:   conn.Identity.ParticipantID,
		ReceiverID: receiver,
		Content:    content,
	})
	if err != nil {
		// No live delivery on a failed append; the client retries.
		return domain.ChatMessage{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	// Re-resolve: the peer may have left during the append.
	if peer, ok := room.PeerOf(from); ok {
		c.Notify.MessageReceived(peer, stored)
	} else {
		log.Debug().Str("module", "app.chat").Str("key", string(key)).Msg("peer absent, message persisted without live delivery")
	}
	return stored, nil
}

// History is a pure read through the gateway, ordered by creation time
// ascending.
func (c *ChatRelay) History(ctx context.Context, caller, partner domain.ParticipantID) ([]domain.ChatMessage, error) {
	return c.Gateway.History(ctx, caller, partner)
}
