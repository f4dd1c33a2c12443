package rtc

import (
	"context"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/fraudline/roomlink/internal/domain"
)

// MediaConnection is the audio leg of one room session. The client is
// always the offerer; the room answers.
type MediaConnection struct {
	pc     *webrtc.PeerConnection
	id     domain.ParticipantID
	cancel context.CancelFunc

	onICE    func(webrtc.ICECandidateInit)
	onTrack  func(ctx context.Context, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)
	onClosed func()
}

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

func NewMediaConnection(cfg webrtc.Configuration, id domain.ParticipantID) (*MediaConnection, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	return &MediaConnection{pc: pc, id: id}, nil
}

func (c *MediaConnection) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "rtc").Str("id", string(c.id)).Str("ice_state", s.String()).Msg("ICE state")
		if s == webrtc.ICEConnectionStateDisconnected ||
			s == webrtc.ICEConnectionStateFailed ||
			s == webrtc.ICEConnectionStateClosed {
			cancel()
		}
	})

	c.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("id", string(c.id)).Str("peer_connection_state", s.String()).Msg("Peer state")
		if s == webrtc.PeerConnectionStateFailed ||
			s == webrtc.PeerConnectionStateClosed {
			if c.onClosed != nil {
				c.onClosed()
			}
		}
	})

	c.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand != nil && c.onICE != nil {
			c.onICE(cand.ToJSON())
		}
	})

	c.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		log.Info().
			Str("module", "rtc").
			Str("id", string(c.id)).
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Msg("remote track")
		if c.onTrack != nil {
			c.onTrack(ctx, track, receiver)
		}
	})

	return nil
}

// CreateAndSetOffer produces the local offer with ICE gathering
// complete, so the remote side receives a full candidate set.
func (c *MediaConnection) CreateAndSetOffer() (*webrtc.SessionDescription, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}

	gatherComplete := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(offer); err != nil {
		return nil, err
	}
	<-gatherComplete

	return c.pc.LocalDescription(), nil
}

// ApplyAnswer installs the room's answer to our offer.
func (c *MediaConnection) ApplyAnswer(answer webrtc.SessionDescription) error {
	return c.pc.SetRemoteDescription(answer)
}

func (c *MediaConnection) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.pc != nil {
		if err := c.pc.Close(); err != nil {
			log.Error().Err(err).Str("module", "rtc").Str("id", string(c.id)).Msg("close error")
		} else {
			log.Info().Str("module", "rtc").Str("id", string(c.id)).Msg("closed")
		}
	}
	if c.onClosed != nil {
		c.onClosed()
	}
}

func (c *MediaConnection) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(ci)
}

// OnICECandidate sets a callback for newly gathered local ICE candidates.
func (c *MediaConnection) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	c.onICE = fn
}

// OnTrack sets an application-level callback for remote tracks.
func (c *MediaConnection) OnTrack(fn func(ctx context.Context, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)) {
	c.onTrack = fn
}

// OnClosed sets an application-level callback for media teardown.
func (c *MediaConnection) OnClosed(fn func()) { c.onClosed = fn }

// AddLocalTrack attaches a local track to the underlying PeerConnection.
func (c *MediaConnection) AddLocalTrack(track webrtc.TrackLocal) (*webrtc.RTPSender, error) {
	sender, err := c.pc.AddTrack(track)
	if err != nil {
		return nil, err
	}
	return sender, nil
}

// RemoveTrack detaches a previously added sender.
func (c *MediaConnection) RemoveTrack(sender *webrtc.RTPSender) error {
	return c.pc.RemoveTrack(sender)
}
