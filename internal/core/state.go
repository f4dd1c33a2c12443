package core

import "github.com/fraudline/roomlink/internal/domain"

// ConnState is the session controller's connection state.
//
//	idle → connecting → connected → disconnected
//
// failed is reachable from connecting on an unrecoverable error. A
// fresh Connect re-enters from failed or disconnected and moves
// straight to connecting: the pass back through idle is collapsed, no
// intermediate idle snapshot is published.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateConnected
	StateDisconnected
	StateFailed
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session published to observers.
// Slices are copies; mutating them does not touch controller state.
type Snapshot struct {
	State    ConnState
	Roster   []domain.ParticipantID
	Messages []domain.ChatMessage
	MicOn    bool
	// Err is the last captured error, or nil. Errors are always
	// surfaced here as data, never thrown across the session boundary.
	Err error
}
