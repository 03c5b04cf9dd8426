package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/core"
	"github.com/mindmend/sessiond/internal/domain"
)

// Lifecycle orchestrates join/leave/disconnect transitions across the two
// registries and emits membership-change notifications. It holds no state of
// its own.
type Lifecycle struct {
	Registry *ConnectionRegistry
	Rooms    *RoomRegistry
	Notify   EventNotifier
}

// JoinResult reports the peer the joiner found, if any, and whether the
// joiner is the handshake initiator.
type JoinResult struct {
	Peer      *core.Connection
	Initiator bool
	Phase     domain.Phase
}

// Join adds the connection to the room under key. Re-joining the same room
// is idempotent. A connection already in a different room leaves it only
// after the new join is admitted: a rejected join changes nothing.
func (l *Lifecycle) Join(id core.ConnID, key domain.RoomKey) (JoinResult, error) {
	conn, ok := l.Registry.Lookup(id)
	if !ok {
		return JoinResult{}, domain.ErrAuthentication
	}
	prev, hadPrev := l.Registry.RoomOf(id)
	if hadPrev && prev == key {
		hadPrev = false
	}

	for {
		room := l.Rooms.GetOrCreate(key)
		peer, initiator, err := room.Join(conn)
		if errors.Is(err, domain.ErrRoomClosed) {
			// Lost a race with eviction; re-create under the same key.
			l.Rooms.Evict(key, room)
			continue
		}
		if err != nil {
			return JoinResult{}, err
		}

		if hadPrev {
			l.leaveRoom(id, prev)
		}
		l.Registry.SetRoom(id, key)
		if peer != nil {
			l.Notify.PeerPresent(conn, peer)
			l.Notify.PeerJoined(peer, conn)
		}
		return JoinResult{Peer: peer, Initiator: initiator, Phase: room.Phase()}, nil
	}
}

// Leave removes the connection from its current room, destroying the room
// when it empties and notifying the remaining member otherwise.
func (l *Lifecycle) Leave(id core.ConnID) {
	key, ok := l.Registry.RoomOf(id)
	if !ok {
		return
	}
	l.Registry.ClearRoom(id)
	l.leaveRoom(id, key)
}

func (l *Lifecycle) leaveRoom(id core.ConnID, key domain.RoomKey) {
	room, ok := l.Rooms.Get(key)
	if !ok {
		return
	}
	remaining, removed := room.Leave(id)
	if !removed {
		return
	}
	if remaining == nil {
		l.Rooms.Evict(key, room)
		return
	}
	l.Notify.PeerLeft(remaining)
}

// Disconnect runs the full cleanup for a closed transport: leave the room,
// then unregister. After it returns no relay can resolve the connection.
// Idempotent.
func (l *Lifecycle) Disconnect(id core.ConnID) {
	l.Leave(id)
	if _, ok := l.Registry.Unregister(id); ok {
		log.Info().Str("module", "app.lifecycle").Str("conn", string(id)).Msg("disconnected")
	}
}

// Connected records the client-reported media-flowing transition.
func (l *Lifecycle) Connected(id core.ConnID) bool {
	key, ok := l.Registry.RoomOf(id)
	if !ok {
		return false
	}
	room, ok := l.Rooms.Get(key)
	if !ok {
		return false
	}
	return room.MarkConnected(id)
}

// RunJanitor closes Waiting rooms idle past ttl, notifying the lone member.
// Blocks until ctx is done.
func (l *Lifecycle) RunJanitor(ctx context.Context, sweep, ttl time.Duration) {
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, room := range l.Rooms.Expired(now, ttl) {
				l.closeRoom(room)
				log.Info().Str("module", "app.lifecycle").Str("key", string(room.Key())).Msg("idle room expired")
			}
		}
	}
}

// Drain closes every room and notifies members. Called once on shutdown.
func (l *Lifecycle) Drain() {
	for _, room := range l.Rooms.All() {
		l.closeRoom(room)
	}
	log.Info().Str("module", "app.lifecycle").Msg("drained all rooms")
}

func (l *Lifecycle) closeRoom(room *core.Room) {
	for _, m := range room.Close() {
		l.Registry.ClearRoom(m.ID)
		l.Notify.RoomClosed(m)
	}
	l.Rooms.Evict(room.Key(), room)
}
