package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/core"
	"github.com/mindmend/sessiond/internal/domain"
)

func (ctl *SessionController) handleSendMessage(ctx context.Context, conn *core.Connection, c *wsConn, data []byte) {
	var p struct {
		Type       string `json:"type"`
		RoomKey    string `json:"roomKey"`
		ReceiverID string `json:"receiverId"`
		Content    string `json:"content"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send-message payload")
		ctl.sendError(c, "bad_payload", "malformed send-message")
		return
	}

	// roomKey is optional, but a stale one is a client bug worth surfacing.
	if p.RoomKey != "" {
		if key, ok := ctl.Chat.Registry.RoomOf(conn.ID); !ok || key != domain.RoomKey(p.RoomKey) {
			ctl.sendError(c, "invalid_message", "roomKey does not match the current room")
			return
		}
	}

	msg, err := ctl.Chat.Send(ctx, conn.ID, domain.ParticipantID(p.ReceiverID), p.Content)
	switch {
	// ErrNotMember wraps ErrValidation, so it must be matched first to keep
	// its own wire code.
	case errors.Is(err, domain.ErrNotMember):
		ctl.sendError(c, "not_a_member", "join a room before sending messages")
		return
	case errors.Is(err, domain.ErrValidation):
		ctl.sendError(c, "invalid_message", err.Error())
		return
	case errors.Is(err, domain.ErrPersistence):
		ctl.sendError(c, "send_failed", "message was not persisted, retry")
		return
	case err != nil:
		ctl.sendError(c, "send_failed", err.Error())
		return
	}

	// Ack with the persisted row; clients use it instead of re-polling.
	ctl.sendJSON(c, messageEvent{
		Type:      evtMessageSent,
		ID:        msg.ID.String(),
		SenderID:  string(msg.SenderID),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	})
}
