package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindmend/sessiond/internal/core"
	"github.com/mindmend/sessiond/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errDeliveryRefused
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) Frames() []core.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Frame, len(f.frames))
	copy(out, f.frames)
	return out
}

var errDeliveryRefused = errors.New("delivery refused")

type notifierEvent struct {
	kind string
	to   core.ConnID
	peer core.ConnID
	msg  domain.ChatMessage
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifierEvent
}

func (f *fakeNotifier) record(e notifierEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeNotifier) PeerPresent(to, peer *core.Connection) {
	f.record(notifierEvent{kind: "peer-present", to: to.ID, peer: peer.ID})
}

func (f *fakeNotifier) PeerJoined(to, peer *core.Connection) {
	f.record(notifierEvent{kind: "peer-joined", to: to.ID, peer: peer.ID})
}

func (f *fakeNotifier) PeerLeft(to *core.Connection) {
	f.record(notifierEvent{kind: "peer-left", to: to.ID})
}

func (f *fakeNotifier) RoomClosed(to *core.Connection) {
	f.record(notifierEvent{kind: "room-closed", to: to.ID})
}

func (f *fakeNotifier) MessageReceived(to *core.Connection, msg domain.ChatMessage) {
	f.record(notifierEvent{kind: "message", to: to.ID, msg: msg})
}

func (f *fakeNotifier) count(kind string, to core.ConnID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.kind == kind && e.to == to {
			n++
		}
	}
	return n
}

func (f *fakeNotifier) last(kind string) (notifierEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].kind == kind {
			return f.events[i], true
		}
	}
	return notifierEvent{}, false
}

type fakeGateway struct {
	mu         sync.Mutex
	msgs       []domain.ChatMessage
	failAppend error
}

func (g *fakeGateway) Append(_ context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failAppend != nil {
		return domain.ChatMessage{}, g.failAppend
	}
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now().UTC()
	g.msgs = append(g.msgs, msg)
	return msg, nil
}

func (g *fakeGateway) History(_ context.Context, caller, partner domain.ParticipantID) ([]domain.ChatMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pair := domain.PairKey(caller, partner)
	var out []domain.ChatMessage
	for _, m := range g.msgs {
		if domain.PairKey(m.SenderID, m.ReceiverID) == pair {
			out = append(out, m)
		}
	}
	return out, nil
}

// newHarness wires registries, lifecycle, relays and fakes for app tests.
type harness struct {
	registry *ConnectionRegistry
	rooms    *RoomRegistry
	life     *Lifecycle
	signals  *SignalingRelay
	chat     *ChatRelay
	notify   *fakeNotifier
	gw       *fakeGateway
}

func newHarness() *harness {
	registry := NewConnectionRegistry()
	rooms := NewRoomRegistry()
	notify := &fakeNotifier{}
	gw := &fakeGateway{}
	return &harness{
		registry: registry,
		rooms:    rooms,
		life:     &Lifecycle{Registry: registry, Rooms: rooms, Notify: notify},
		signals:  &SignalingRelay{Registry: registry, Rooms: rooms},
		chat:     &ChatRelay{Registry: registry, Rooms: rooms, Gateway: gw, Notify: notify},
		notify:   notify,
		gw:       gw,
	}
}

func (h *harness) connect(participant string, role domain.Role) (*core.Connection, *fakeConn) {
	fc := &fakeConn{}
	conn := h.registry.Register(fc, domain.Identity{
		ParticipantID: domain.ParticipantID(participant),
		Role:          role,
	}, nil)
	return conn, fc
}
