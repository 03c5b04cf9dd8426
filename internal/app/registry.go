package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/core"
	"github.com/mindmend/sessiond/internal/domain"
)

type connEntry struct {
	conn    *core.Connection
	roomKey domain.RoomKey
	cancel  context.CancelFunc
}

// ConnectionRegistry maps live connections to identities and to at most one
// room. It is the single owner of Connection records.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{conns: make(map[core.ConnID]*connEntry)}
}

// Register binds a transport to an authenticated identity and returns the
// new connection record. cancel stops the connection's pumps on eviction.
func (r *ConnectionRegistry) Register(sc core.SignalConnection, id domain.Identity, cancel context.CancelFunc) *core.Connection {
	conn := &core.Connection{
		ID:       core.ConnID(uuid.NewString()),
		Identity: id,
		Conn:     sc,
		JoinedAt: time.Now(),
	}
	r.mu.Lock()
	r.conns[conn.ID] = &connEntry{conn: conn, cancel: cancel}
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("conn", string(conn.ID)).Str("participant", string(id.ParticipantID)).Str("role", string(id.Role)).Msg("connection registered")
	return conn
}

func (r *ConnectionRegistry) Lookup(id core.ConnID) (*core.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.conn, true
	}
	return nil, false
}

// Unregister removes the connection and cancels its pumps. Idempotent: the
// second call is a no-op and reports false so the caller can skip room
// cleanup.
func (r *ConnectionRegistry) Unregister(id core.ConnID) (domain.RoomKey, bool) {
	r.mu.Lock()
	e, ok := r.conns[id]
	if !ok {
		r.mu.Unlock()
		return "", false
	}
	delete(r.conns, id)
	r.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("connection unregistered")
	return e.roomKey, true
}

func (r *ConnectionRegistry) RoomOf(id core.ConnID) (domain.RoomKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.roomKey == "" {
		return "", false
	}
	return e.roomKey, true
}

func (r *ConnectionRegistry) SetRoom(id core.ConnID, key domain.RoomKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.roomKey = key
	return true
}

func (r *ConnectionRegistry) ClearRoom(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		e.roomKey = ""
	}
}

func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
