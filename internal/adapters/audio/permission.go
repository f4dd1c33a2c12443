package audio

import (
	"context"
	"errors"
)

var errCaptureDenied = errors.New("capture denied by configuration")

// StaticGate is a configuration-driven permission gate for platforms
// without a runtime prompt: the decision is made once, up front.
type StaticGate struct {
	Allowed bool
}

func (g StaticGate) RequestCapture(_ context.Context) error {
	if g.Allowed {
		return nil
	}
	return errCaptureDenied
}

// SilenceSource is a FrameSource emitting opus DTX silence, useful when
// no capture hardware is configured.
type SilenceSource struct{}

func (SilenceSource) NextFrame() ([]byte, error) {
	frame := make([]byte, len(opusSilence))
	copy(frame, opusSilence)
	return frame, nil
}

func (SilenceSource) Close() error { return nil }
