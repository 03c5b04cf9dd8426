package signal

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/core"
	"github.com/mindmend/sessiond/internal/domain"
)

// Client-to-server event types.
const (
	evtJoinRoom     = "join-room"
	evtLeaveRoom    = "leave-room"
	evtOffer        = "offer"
	evtAnswer       = "answer"
	evtICECandidate = "ice-candidate"
	evtConnected    = "connected"
	evtSendMessage  = "send-message"
	evtPing         = "ping"
)

// Server-to-client event types.
const (
	evtJoined         = "joined"
	evtPeerPresent    = "peer-present"
	evtPeerJoined     = "peer-joined"
	evtPeerLeft       = "peer-left"
	evtRoomClosed     = "room-closed"
	evtReceiveMessage = "receive-message"
	evtMessageSent    = "message-sent"
	evtLeft           = "left"
	evtPong           = "pong"
	evtError          = "error"
)

type errorEvent struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type peerEvent struct {
	Type             string `json:"type"`
	PeerConnectionID string `json:"peerConnectionId"`
}

type messageEvent struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier is the adapter half of membership and chat notifications: the app
// layer decides who hears what, this type decides what it looks like on the
// wire.
type Notifier struct{}

func (Notifier) PeerPresent(to, peer *core.Connection) {
	notify(to, peerEvent{Type: evtPeerPresent, PeerConnectionID: string(peer.ID)})
}

func (Notifier) PeerJoined(to, peer *core.Connection) {
	notify(to, peerEvent{Type: evtPeerJoined, PeerConnectionID: string(peer.ID)})
}

func (Notifier) PeerLeft(to *core.Connection) {
	notify(to, struct {
		Type string `json:"type"`
	}{evtPeerLeft})
}

func (Notifier) RoomClosed(to *core.Connection) {
	notify(to, struct {
		Type string `json:"type"`
	}{evtRoomClosed})
}

func (Notifier) MessageReceived(to *core.Connection, msg domain.ChatMessage) {
	notify(to, messageEvent{
		Type:      evtReceiveMessage,
		ID:        msg.ID.String(),
		SenderID:  string(msg.SenderID),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	})
}

func notify(to *core.Connection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("notify marshal")
		return
	}
	if err := to.Conn.TrySend(core.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(to.ID)).Msg("notify delivery failed")
	}
}
