// Package audio provides the microphone-facing adapters: a capture
// source that feeds a publishable sample track and the permission gate.
package audio

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/rs/zerolog/log"
)

const frameDuration = 20 * time.Millisecond

// opusSilence is a minimal DTX frame, used when the source underruns so
// the track keeps its timing.
var opusSilence = []byte{0xf8, 0xff, 0xfe}

// FrameSource yields encoded audio frames. Implementations wrap an OS
// capture pipeline or a file; tests use a canned source.
type FrameSource interface {
	// NextFrame returns one encoded frame. io.EOF ends the capture.
	NextFrame() ([]byte, error)
	Close() error
}

// Capture implements core.AudioSource: Start activates the source and
// yields a publishable opus track, Stop releases the device. At most
// one capture runs at a time.
type Capture struct {
	open func() (FrameSource, error)

	mu     sync.Mutex
	cancel context.CancelFunc
	src    FrameSource
}

// NewCapture wires a capture around a source factory; the factory runs
// on every Start so the device is only held while the mic is on.
func NewCapture(open func() (FrameSource, error)) *Capture {
	return &Capture{open: open}
}

func (c *Capture) Start(ctx context.Context) (webrtc.TrackLocal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src != nil {
		return nil, errors.New("capture already active")
	}

	src, err := c.open()
	if err != nil {
		return nil, err
	}
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
		"audio", "roomlink-mic",
	)
	if err != nil {
		_ = src.Close()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.src = src
	c.cancel = cancel
	go pump(runCtx, src, track)
	log.Info().Str("module", "audio").Msg("capture started")
	return track, nil
}

func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src == nil {
		return nil
	}
	c.cancel()
	err := c.src.Close()
	c.src = nil
	c.cancel = nil
	log.Info().Str("module", "audio").Msg("capture stopped")
	return err
}

// pump writes one frame per tick until the source ends or the capture
// is stopped.
func pump(ctx context.Context, src FrameSource, track *webrtc.TrackLocalStaticSample) {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := src.NextFrame()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				log.Warn().Err(err).Str("module", "audio").Msg("frame read, sending silence")
				frame = opusSilence
			}
			if err := track.WriteSample(media.Sample{Data: frame, Duration: frameDuration}); err != nil {
				log.Error().Err(err).Str("module", "audio").Msg("write sample")
				return
			}
		}
	}
}
