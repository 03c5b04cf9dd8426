// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication = errors.New("identity could not be established")
	ErrRoomFull       = errors.New("room already has two members")
	ErrRoomClosed     = errors.New("room is closed")
	ErrValidation     = errors.New("invalid message")
	ErrPersistence    = errors.New("message could not be persisted")
	ErrUnknownRole    = errors.New("unknown role")

	// ErrNotMember is a validation failure: sending from outside a room is a
	// malformed request, not a distinct error class.
	ErrNotMember = fmt.Errorf("%w: sender is not a room member", ErrValidation)
)

type ParticipantID string

// Role distinguishes the two sides of an appointment.
type Role string

const (
	RoleClient    Role = "client"
	RoleTherapist Role = "therapist"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleTherapist:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

// Identity is the authenticated principal behind a live connection.
// Verified externally (JWT); the core never makes authorization decisions.
type Identity struct {
	ParticipantID ParticipantID `json:"participantId"`
	Role          Role          `json:"role"`
}
