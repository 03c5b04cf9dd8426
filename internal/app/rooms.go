package app

import (
	"sync"
	"time"

	"github.com/mindmend/sessiond/internal/core"
	"github.com/mindmend/sessiond/internal/domain"
)

// RoomRegistry maps room keys to live rooms. Rooms are created lazily on
// first join and evicted once empty; the key itself (the appointment id) is
// stable across call attempts.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]*core.Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[domain.RoomKey]*core.Room)}
}

func (f *RoomRegistry) GetOrCreate(key domain.RoomKey) *core.Room {
	f.mu.RLock()
	room, ok := f.rooms[key]
	f.mu.RUnlock()
	if ok {
		return room
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if room, ok = f.rooms[key]; ok {
		return room
	}
	room = core.NewRoom(key)
	f.rooms[key] = room
	return room
}

func (f *RoomRegistry) Get(key domain.RoomKey) (*core.Room, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[key]
	return room, ok
}

// Evict removes the mapping only if it still points at room and the room is
// empty, so a re-created room under the same key is never dropped by a stale
// cleanup.
func (f *RoomRegistry) Evict(key domain.RoomKey, room *core.Room) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if current, ok := f.rooms[key]; ok && current == room && current.MemberCount() == 0 {
		delete(f.rooms, key)
	}
}

func (f *RoomRegistry) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for _, r := range f.rooms {
		out = append(out, r.Info())
	}
	return out
}

// Expired returns Waiting rooms idle past ttl, for the janitor.
func (f *RoomRegistry) Expired(now time.Time, ttl time.Duration) []*core.Room {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*core.Room
	for _, r := range f.rooms {
		if r.Expired(now, ttl) {
			out = append(out, r)
		}
	}
	return out
}

// All snapshots every live room, for shutdown drain.
func (f *RoomRegistry) All() []*core.Room {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*core.Room, 0, len(f.rooms))
	for _, r := range f.rooms {
		out = append(out, r)
	}
	return out
}
