package domain

// RoomKey identifies a coordination room. The appointment identifier is the
// canonical key; participant identifiers must not be used here, or two
// simultaneous appointments with the same therapist would collide.
type RoomKey string

// Phase is the per-room call session state.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseWaiting
	PhaseNegotiating
	PhaseConnected
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseWaiting:
		return "waiting"
	case PhaseNegotiating:
		return "negotiating"
	case PhaseConnected:
		return "connected"
	case PhaseClosed:
		return "closed"
	}
	return "unknown"
}
