package core

import (
	"sync"
	"time"

	"github.com/mindmend/sessiond/internal/domain"
	"github.com/rs/zerolog/log"
)

// Room is a threadsafe two-member coordination context keyed by an
// appointment. Membership is ordered by join time; the second joiner is the
// handshake initiator. The room never touches transport resources.
type Room struct {
	key domain.RoomKey

	mu         sync.Mutex
	members    []*Connection
	phase      domain.Phase
	lastActive time.Time
}

func NewRoom(key domain.RoomKey) *Room {
	return &Room{
		key:        key,
		phase:      domain.PhaseEmpty,
		lastActive: time.Now(),
	}
}

func (r *Room) Key() domain.RoomKey { return r.key }

// Join adds a connection as a member. Re-joining with the same ConnID is
// idempotent and returns the existing peer. The returned initiator flag is
// true for the member who found a peer already waiting; that side sends the
// first offer, which keeps both sides from offering at once.
func (r *Room) Join(c *Connection) (peer *Connection, initiator bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == domain.PhaseClosed && len(r.members) == 0 {
		// Evicted from its registry; the caller re-creates under the same key.
		return nil, false, domain.ErrRoomClosed
	}

	for i, m := range r.members {
		if m.ID == c.ID {
			return r.otherLocked(c.ID), i == 1, nil
		}
	}
	if len(r.members) >= 2 {
		return nil, false, domain.ErrRoomFull
	}

	r.members = append(r.members, c)
	r.lastActive = time.Now()
	if len(r.members) == 1 {
		r.phase = domain.PhaseWaiting
		log.Info().Str("module", "core.room").Str("key", string(r.key)).Str("conn", string(c.ID)).Msg("first member joined, waiting for peer")
		return nil, false, nil
	}
	r.phase = domain.PhaseNegotiating
	log.Info().Str("module", "core.room").Str("key", string(r.key)).Str("conn", string(c.ID)).Msg("second member joined, negotiating")
	return r.members[0], true, nil
}

// Leave removes a member. The remaining member, if any, is returned so the
// caller can deliver a peer-left notification; the room reverts to Waiting
// for a fresh call attempt under the same key.
func (r *Room) Leave(id ConnID) (remaining *Connection, removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, m := range r.members {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	r.members = append(r.members[:idx], r.members[idx+1:]...)
	r.lastActive = time.Now()
	if len(r.members) == 0 {
		r.phase = domain.PhaseClosed
		log.Info().Str("module", "core.room").Str("key", string(r.key)).Msg("last member left, room closed")
		return nil, true
	}
	r.phase = domain.PhaseWaiting
	log.Info().Str("module", "core.room").Str("key", string(r.key)).Str("conn", string(id)).Msg("member left, peer reverts to waiting")
	return r.members[0], true
}

// PeerOf resolves the relay target for id. The snapshot is consistent: a
// connection mid-removal is never returned.
func (r *Room) PeerOf(id ConnID) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isMemberLocked(id) {
		return nil, false
	}
	if peer := r.otherLocked(id); peer != nil {
		return peer, true
	}
	return nil, false
}

// MarkConnected records the client-reported media-flowing transition. The
// server never parses SDP, so it cannot observe this itself.
func (r *Room) MarkConnected(id ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isMemberLocked(id) || r.phase != domain.PhaseNegotiating {
		return false
	}
	r.phase = domain.PhaseConnected
	r.lastActive = time.Now()
	return true
}

// Close empties the room and returns former members so callers can notify
// them. Used on shutdown drain and idle expiry.
func (r *Room) Close() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	former := r.members
	r.members = nil
	r.phase = domain.PhaseClosed
	return former
}

func (r *Room) Phase() domain.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Room) IsMember(id ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isMemberLocked(id)
}

func (r *Room) Members() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Connection, len(r.members))
	copy(out, r.members)
	return out
}

// Expired reports whether the room has sat in Waiting with no activity for
// longer than ttl. Only Waiting rooms are garbage collected.
func (r *Room) Expired(now time.Time, ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase == domain.PhaseWaiting && now.Sub(r.lastActive) > ttl
}

func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{Key: r.key, MemberCount: len(r.members), Phase: r.phase.String()}
}

func (r *Room) isMemberLocked(id ConnID) bool {
	for _, m := range r.members {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (r *Room) otherLocked(id ConnID) *Connection {
	for _, m := range r.members {
		if m.ID != id {
			return m
		}
	}
	return nil
}
