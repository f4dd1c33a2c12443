package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/fraudline/roomlink/internal/adapters/rtc"
	"github.com/fraudline/roomlink/internal/core"
	"github.com/fraudline/roomlink/internal/domain"
)

const (
	roomPath         = "/api/ws/room"
	handshakeTimeout = 10 * time.Second
)

var (
	ErrNotConnected = errors.New("not connected")
	errConnClosed   = errors.New("connection closed")
)

// Transport speaks the room service's envelope protocol. It implements
// core.RoomTransport; all callbacks fire on transport goroutines and
// must be re-marshaled by the consumer.
type Transport struct {
	dialer *websocket.Dialer

	mu      sync.RWMutex
	handler core.RoomHandler
	conn    *wsConn
	media   *rtc.MediaConnection
	state   core.TransportState
	local   domain.ParticipantID
	remotes map[domain.ParticipantID]struct{}

	seq   atomic.Uint64
	ackMu sync.Mutex
	acks  map[uint64]chan error

	negMu      sync.Mutex
	negotiated chan error
}

func NewTransport() *Transport {
	return &Transport{
		dialer:  websocket.DefaultDialer,
		remotes: make(map[domain.ParticipantID]struct{}),
		acks:    make(map[uint64]chan error),
	}
}

func (t *Transport) SetHandler(h core.RoomHandler) {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
}

// Connect dials the room endpoint, performs the join handshake and
// starts the pumps. The room answers the join with a room_state frame
// carrying our identity and the current participants.
func (t *Transport) Connect(ctx context.Context, rawURL, token string, opts core.ConnectOptions) error {
	t.mu.Lock()
	if t.conn != nil {
		t.mu.Unlock()
		return errors.New("already connected")
	}
	t.mu.Unlock()

	u := strings.TrimSuffix(rawURL, "/") + roomPath
	header := http.Header{"Authorization": {"Bearer " + token}}
	conn, _, err := t.dialer.DialContext(ctx, u, header)
	if err != nil {
		return err
	}

	c := newWSConn(conn)
	go c.writePump()

	if err := c.TrySendJSON(envelope{Type: typeJoin, AutoSubscribe: opts.AutoSubscribe}); err != nil {
		c.Close()
		return err
	}
	state, err := awaitRoomState(ctx, conn)
	if err != nil {
		c.Close()
		return err
	}

	t.mu.Lock()
	t.conn = c
	t.local = domain.ParticipantID(state.Self)
	t.remotes = make(map[domain.ParticipantID]struct{}, len(state.Participants))
	for _, id := range state.Participants {
		if pid := domain.ParticipantID(id); pid != t.local {
			t.remotes[pid] = struct{}{}
		}
	}
	old := t.state
	t.state = core.TransportConnected
	h := t.handler
	t.mu.Unlock()

	go t.readPump(c)

	log.Info().Str("module", "ws").Str("self", state.Self).Int("participants", len(state.Participants)).Msg("joined room")
	if h != nil {
		h.OnStateChanged(old, core.TransportConnected)
	}
	return nil
}

func awaitRoomState(ctx context.Context, conn *websocket.Conn) (envelope, error) {
	deadline := time.Now().Add(handshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)
	defer conn.SetReadDeadline(time.Time{})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return envelope{}, err
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return envelope{}, err
		}
		switch env.Type {
		case typeRoomState:
			return env, nil
		case typeError:
			return envelope{}, errors.New(env.Error)
		}
		// anything else is an event racing the handshake; the
		// room_state that follows carries the full roster anyway
	}
}

// Disconnect drops the socket and the media leg. Idempotent.
func (t *Transport) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	c := t.conn
	media := t.media
	t.conn = nil
	t.media = nil
	t.remotes = make(map[domain.ParticipantID]struct{})
	old := t.state
	t.state = core.TransportDisconnected
	h := t.handler
	t.mu.Unlock()

	if c == nil {
		return nil
	}
	_ = c.TrySendJSON(envelope{Type: typeLeave})
	if media != nil {
		media.Close()
	}
	c.Close()
	t.failAcks(errConnClosed)

	if h != nil && old == core.TransportConnected {
		h.OnStateChanged(old, core.TransportDisconnected)
	}
	return nil
}

// PublishTrack attaches the track to the audio leg and renegotiates,
// creating the PeerConnection on first use.
func (t *Transport) PublishTrack(ctx context.Context, track webrtc.TrackLocal) (core.TrackPublication, error) {
	t.mu.Lock()
	if t.conn == nil {
		t.mu.Unlock()
		return nil, ErrNotConnected
	}
	if t.media == nil {
		m, err := rtc.NewMediaConnection(rtc.DefaultWebRTCConfig(), t.local)
		if err != nil {
			t.mu.Unlock()
			return nil, err
		}
		m.OnICECandidate(t.sendCandidate)
		m.OnClosed(func() { t.onMediaClosed(m) })
		m.OnTrack(func(ctx context.Context, track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
			// keep the receiver drained; playout is wired by the consumer
			go drainTrack(ctx, track)
		})
		if err := m.Start(context.Background()); err != nil {
			m.Close()
			t.mu.Unlock()
			return nil, err
		}
		t.media = m
	}
	media := t.media
	t.mu.Unlock()

	sender, err := media.AddLocalTrack(track)
	if err != nil {
		return nil, err
	}
	if err := t.negotiate(ctx, media); err != nil {
		_ = media.RemoveTrack(sender)
		return nil, err
	}
	return &trackPublication{sid: uuid.NewString(), sender: sender}, nil
}

func (t *Transport) UnpublishTrack(ctx context.Context, pub core.TrackPublication) error {
	p, ok := pub.(*trackPublication)
	if !ok {
		return errors.New("foreign track publication")
	}
	t.mu.RLock()
	media := t.media
	t.mu.RUnlock()
	if media == nil {
		return nil
	}
	if err := media.RemoveTrack(p.sender); err != nil {
		return err
	}
	return t.negotiate(ctx, media)
}

// negotiate runs one offer/answer exchange. The answer arrives on the
// read pump, which resolves the pending channel.
func (t *Transport) negotiate(ctx context.Context, media *rtc.MediaConnection) error {
	t.negMu.Lock()
	ch := make(chan error, 1)
	t.negotiated = ch
	t.negMu.Unlock()

	offer, err := media.CreateAndSetOffer()
	if err != nil {
		return err
	}
	t.mu.RLock()
	c := t.conn
	t.mu.RUnlock()
	if c == nil {
		return ErrNotConnected
	}
	if err := c.TrySendJSON(envelope{Type: typeOffer, SDP: offer.SDP}); err != nil {
		return err
	}
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishData sends one payload on a topic. Reliable publishes block
// until the room acknowledges the sequence number.
func (t *Transport) PublishData(ctx context.Context, payload []byte, topic string, reliable bool) error {
	t.mu.RLock()
	c := t.conn
	t.mu.RUnlock()
	if c == nil {
		return ErrNotConnected
	}

	env := envelope{Type: typeData, Topic: topic, Reliable: reliable, Payload: payload}
	if !reliable {
		return c.TrySendJSON(env)
	}

	env.Seq = t.seq.Add(1)
	ch := make(chan error, 1)
	t.ackMu.Lock()
	t.acks[env.Seq] = ch
	t.ackMu.Unlock()
	defer func() {
		t.ackMu.Lock()
		delete(t.acks, env.Seq)
		t.ackMu.Unlock()
	}()

	if err := c.TrySendJSON(env); err != nil {
		return err
	}
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) LocalIdentity() domain.ParticipantID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.local
}

func (t *Transport) RemoteIdentities() []domain.ParticipantID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]domain.ParticipantID, 0, len(t.remotes))
	for id := range t.remotes {
		ids = append(ids, id)
	}
	return ids
}

func (t *Transport) readPump(c *wsConn) {
	defer t.onReadClosed(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("module", "ws").Msg("readPump closing")
			return
		}
		t.dispatch(data)
	}
}

// onReadClosed handles a socket dropped by the far side; a local
// Disconnect has already swapped t.conn out and this is a no-op.
func (t *Transport) onReadClosed(c *wsConn) {
	t.mu.Lock()
	if t.conn != c {
		t.mu.Unlock()
		return
	}
	t.conn = nil
	media := t.media
	t.media = nil
	t.remotes = make(map[domain.ParticipantID]struct{})
	old := t.state
	t.state = core.TransportDisconnected
	h := t.handler
	t.mu.Unlock()

	if media != nil {
		media.Close()
	}
	c.Close()
	t.failAcks(errConnClosed)
	if h != nil && old == core.TransportConnected {
		h.OnStateChanged(old, core.TransportDisconnected)
	}
}

func (t *Transport) dispatch(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad json")
		return
	}

	t.mu.RLock()
	h := t.handler
	media := t.media
	t.mu.RUnlock()

	switch env.Type {
	case typeData:
		if h != nil {
			h.OnDataReceived(env.Payload, domain.ParticipantID(env.From), env.Topic)
		}
	case typeMemberJoined:
		id := domain.ParticipantID(env.ID)
		t.mu.Lock()
		t.remotes[id] = struct{}{}
		t.mu.Unlock()
		if h != nil {
			h.OnParticipantJoined(id)
		}
	case typeMemberLeft:
		id := domain.ParticipantID(env.ID)
		t.mu.Lock()
		delete(t.remotes, id)
		t.mu.Unlock()
		if h != nil {
			h.OnParticipantLeft(id)
		}
	case typeAck:
		t.resolveAck(env.Seq, nil)
	case typeAnswer:
		if media == nil {
			log.Warn().Str("module", "ws").Msg("answer without media connection")
			return
		}
		err := media.ApplyAnswer(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: env.SDP})
		t.negMu.Lock()
		if t.negotiated != nil {
			t.negotiated <- err
			t.negotiated = nil
		}
		t.negMu.Unlock()
	case typeCandidate:
		if media == nil {
			return
		}
		cand := webrtc.ICECandidateInit{Candidate: env.Candidate}
		if env.SDPMid != "" {
			cand.SDPMid = &env.SDPMid
		}
		idx := env.SDPMLineIndex
		cand.SDPMLineIndex = &idx
		if err := media.AddICECandidate(cand); err != nil {
			log.Error().Err(err).Str("module", "ws").Msg("add ice candidate")
		}
	case typeError:
		if env.Seq != 0 {
			t.resolveAck(env.Seq, errors.New(env.Error))
			return
		}
		log.Warn().Str("module", "ws").Str("error", env.Error).Msg("room error")
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown envelope")
	}
}

func (t *Transport) resolveAck(seq uint64, err error) {
	t.ackMu.Lock()
	ch, ok := t.acks[seq]
	delete(t.acks, seq)
	t.ackMu.Unlock()
	if ok {
		ch <- err
	}
}

func (t *Transport) failAcks(err error) {
	t.ackMu.Lock()
	for seq, ch := range t.acks {
		delete(t.acks, seq)
		ch <- err
	}
	t.ackMu.Unlock()
}

// onMediaClosed forgets the media leg once its PeerConnection dies, so
// the next PublishTrack builds a fresh one.
func (t *Transport) onMediaClosed(m *rtc.MediaConnection) {
	t.mu.Lock()
	if t.media != m {
		t.mu.Unlock()
		return
	}
	t.media = nil
	t.mu.Unlock()
	log.Info().Str("module", "ws").Msg("media connection closed")
}

func drainTrack(ctx context.Context, track *webrtc.TrackRemote) {
	for ctx.Err() == nil {
		if _, _, err := track.ReadRTP(); err != nil {
			return
		}
	}
}

func (t *Transport) sendCandidate(ci webrtc.ICECandidateInit) {
	t.mu.RLock()
	c := t.conn
	t.mu.RUnlock()
	if c == nil {
		return
	}
	env := envelope{Type: typeCandidate, Candidate: ci.Candidate}
	if ci.SDPMid != nil {
		env.SDPMid = *ci.SDPMid
	}
	if ci.SDPMLineIndex != nil {
		env.SDPMLineIndex = *ci.SDPMLineIndex
	}
	if err := c.TrySendJSON(env); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("candidate send dropped")
	}
}

// trackPublication is this transport's publication handle.
type trackPublication struct {
	sid    string
	sender *webrtc.RTPSender
}

func (p *trackPublication) SID() string { return p.sid }
