package app

import (
	"github.com/mindmend/sessiond/internal/core"
	"github.com/mindmend/sessiond/internal/domain"
)

// EventNotifier delivers server-initiated events to a member's transport.
// The adapter owns the wire format; the app layer only decides who hears what.
type EventNotifier interface {
	// PeerPresent tells a newcomer that a peer already waits. The newcomer
	// is the handshake initiator.
	PeerPresent(to, peer *core.Connection)
	// PeerJoined tells an existing member that a newcomer arrived.
	PeerJoined(to, peer *core.Connection)
	PeerLeft(to *core.Connection)
	RoomClosed(to *core.Connection)
	MessageReceived(to *core.Connection, msg domain.ChatMessage)
}
