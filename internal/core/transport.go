// Package core defines the ports of the session client and the session
// controller that owns all per-session state. Adapters implement the
// interfaces; the controller never reaches past them.
package core

import (
	"context"

	"github.com/pion/webrtc/v4"

	"github.com/fraudline/roomlink/internal/domain"
)

// TransportState is the connection state reported by a RoomTransport.
type TransportState int

const (
	TransportDisconnected TransportState = iota
	TransportConnected
)

func (s TransportState) String() string {
	if s == TransportConnected {
		return "connected"
	}
	return "disconnected"
}

// ConnectOptions tunes a transport connection attempt.
type ConnectOptions struct {
	// AutoSubscribe makes the transport deliver all remote data and
	// audio without per-track subscription calls.
	AutoSubscribe bool
}

// TrackPublication is the opaque handle for one published local track.
// Owned exclusively by the session controller while the mic is on.
type TrackPublication interface {
	SID() string
}

// RoomTransport is the consumed contract of the underlying real-time
// room. Implementations own their sockets and peer connections; the
// controller only ever holds TrackPublication handles.
type RoomTransport interface {
	// SetHandler registers the callback surface. Must be called before
	// Connect; callbacks may arrive from transport-internal goroutines.
	SetHandler(h RoomHandler)

	Connect(ctx context.Context, url, token string, opts ConnectOptions) error
	// Disconnect is idempotent and safe in any state.
	Disconnect(ctx context.Context) error

	PublishTrack(ctx context.Context, track webrtc.TrackLocal) (TrackPublication, error)
	UnpublishTrack(ctx context.Context, pub TrackPublication) error
	// PublishData sends payload on a named topic. Reliable publishes are
	// retried/acknowledged by the transport; best-effort ones are not.
	PublishData(ctx context.Context, payload []byte, topic string, reliable bool) error

	LocalIdentity() domain.ParticipantID
	RemoteIdentities() []domain.ParticipantID
}

// RoomHandler is the callback surface a RoomTransport invokes. Raw
// transport objects never cross this boundary; participants are plain
// identifiers.
type RoomHandler interface {
	OnStateChanged(oldState, newState TransportState)
	OnParticipantJoined(id domain.ParticipantID)
	OnParticipantLeft(id domain.ParticipantID)
	// OnDataReceived delivers one inbound payload. from and topic may be
	// empty when the transport does not supply them.
	OnDataReceived(payload []byte, from domain.ParticipantID, topic string)
}
