package core

import (
	"context"

	"github.com/pion/webrtc/v4"
)

//go:generate mockgen -source=audio.go -destination=mocks/audio_mock.go -package=mocks

// PermissionGate models the OS capture-permission subsystem.
type PermissionGate interface {
	// RequestCapture returns nil when microphone capture is allowed.
	RequestCapture(ctx context.Context) error
}

// AudioSource owns the microphone hardware: it configures the audio
// route for bidirectional voice, activates capture and yields a
// publishable track. At most one capture is active at a time.
type AudioSource interface {
	Start(ctx context.Context) (webrtc.TrackLocal, error)
	// Stop releases the capture device. Idempotent.
	Stop() error
}
