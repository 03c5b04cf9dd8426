package core

import (
	"time"

	"github.com/mindmend/sessiond/internal/domain"
)

// Frame is an encoded wire message ready for the transport.
type Frame []byte

// ConnID identifies one live transport connection. A participant reconnecting
// gets a fresh ConnID; the old one is never reused.
type ConnID string

// SignalConnection abstracts the outbound side of a transport endpoint.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Connection binds a live transport to an authenticated identity.
// Created on transport open, destroyed on transport close.
type Connection struct {
	ID       ConnID
	Identity domain.Identity
	Conn     SignalConnection
	JoinedAt time.Time
}

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	Key         domain.RoomKey `json:"key"`
	MemberCount int            `json:"memberCount"`
	Phase       string         `json:"phase"`
}
