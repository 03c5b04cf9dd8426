package app

import (
	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/core"
)

// SignalingRelay forwards opaque handshake frames (offer, answer,
// ice-candidate) to the sender's current peer. It never reads the payload,
// never retries and never persists: a signal that finds no peer is dropped,
// and the call flow re-initiates from the client side.
type SignalingRelay struct {
	Registry *ConnectionRegistry
	Rooms    *RoomRegistry
}

// Relay resolves peerOf(room, from) and forwards frame verbatim. An absent
// peer is an expected transient state, not an error; the caller is not told.
func (r *SignalingRelay) Relay(from core.ConnID, frame core.Frame) {
	if _, ok := r.Registry.Lookup(from); !ok {
		// Unregistered senders relay nothing, ever.
		return
	}
	key, ok := r.Registry.RoomOf(from)
	if !ok {
		log.Debug().Str("module", "app.signaling").Str("conn", string(from)).Msg("signal from connection outside any room, dropped")
		return
	}
	room, ok := r.Rooms.Get(key)
	if !ok {
		return
	}
	peer, ok := room.PeerOf(from)
	if !ok {
		log.Debug().Str("module", "app.signaling").Str("key", string(key)).Msg("no peer present, signal dropped")
		return
	}
	if err := peer.Conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.signaling").Str("key", string(key)).Str("to", string(peer.ID)).Msg("signal delivery failed")
	}
}
