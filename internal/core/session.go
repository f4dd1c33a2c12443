package core

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fraudline/roomlink/internal/domain"
	"github.com/fraudline/roomlink/internal/wire"
)

const sendTimeout = 10 * time.Second

// Options configure a Controller.
type Options struct {
	// LocalLabel is the local display name, used for role inference.
	LocalLabel string
	// AgentLabel attributes payloads that arrive without a decodable
	// sender. Defaults to "agent".
	AgentLabel string
}

// Controller owns one logical session: connection lifecycle, the chat
// and bootstrap topics, the microphone publication and the participant
// roster. All state lives behind a single event loop; transport
// callbacks and public methods post mutations into it, so no session
// field is ever touched from more than one goroutine.
type Controller struct {
	transport RoomTransport
	perms     PermissionGate
	audio     AudioSource

	localLabel string
	agentLabel string

	ops     chan func()
	updates chan Snapshot
	quit    chan struct{}
	once    sync.Once

	// owned by the event loop
	state         ConnState
	roster        []domain.ParticipantID
	messages      []domain.ChatMessage
	micOn         bool
	micPub        TrackPublication
	lastErr       error
	pending       *domain.BootstrapPayload
	bootstrapSent bool
}

// NewController wires a controller to its collaborators and starts the
// state-owning loop. The caller must Close it when done.
func NewController(transport RoomTransport, perms PermissionGate, audio AudioSource, opts Options) *Controller {
	if opts.AgentLabel == "" {
		opts.AgentLabel = "agent"
	}
	c := &Controller{
		transport:  transport,
		perms:      perms,
		audio:      audio,
		localLabel: opts.LocalLabel,
		agentLabel: opts.AgentLabel,
		ops:        make(chan func(), 64),
		updates:    make(chan Snapshot, 1),
		quit:       make(chan struct{}),
		state:      StateIdle,
	}
	transport.SetHandler(c)
	go c.run()
	return c
}

func (c *Controller) run() {
	for {
		select {
		case fn := <-c.ops:
			fn()
		case <-c.quit:
			return
		}
	}
}

// do runs fn on the state loop and waits for it.
func (c *Controller) do(fn func()) {
	done := make(chan struct{})
	select {
	case c.ops <- func() { fn(); close(done) }:
	case <-c.quit:
		return
	}
	select {
	case <-done:
	case <-c.quit:
	}
}

// post runs fn on the state loop without waiting. Used by transport
// callbacks, which may originate on adapter-internal goroutines.
func (c *Controller) post(fn func()) {
	select {
	case c.ops <- fn:
	case <-c.quit:
	}
}

// Close stops the state loop. It does not disconnect; call Disconnect
// first if a session is live.
func (c *Controller) Close() {
	c.once.Do(func() { close(c.quit) })
}

// Snapshot returns an immutable copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	var snap Snapshot
	c.do(func() { snap = c.snapshot() })
	return snap
}

// Updates yields coalesced state snapshots: the channel always carries
// the latest state and never blocks the state loop.
func (c *Controller) Updates() <-chan Snapshot {
	return c.updates
}

// Connect validates the endpoint, gates on capture permission, dials
// the transport with auto-subscribe, enables the microphone and sends
// any pending bootstrap payload exactly once. The returned error is
// also captured in the observable error slot.
func (c *Controller) Connect(ctx context.Context, rawURL, token string) error {
	endpoint := wire.NormalizeEndpoint(rawURL)
	if !hasHost(endpoint) || strings.TrimSpace(token) == "" {
		err := fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
		c.do(func() {
			c.lastErr = err
			c.notify()
		})
		return err
	}

	c.do(func() {
		c.state = StateConnecting
		c.lastErr = nil
		c.bootstrapSent = false
		c.notify()
	})
	log.Info().Str("module", "core.session").Str("endpoint", endpoint).Msg("connecting")

	if err := c.perms.RequestCapture(ctx); err != nil {
		err = fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		c.do(func() { c.fail(err) })
		return err
	}

	if err := c.transport.Connect(ctx, endpoint, token, ConnectOptions{AutoSubscribe: true}); err != nil {
		err = fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		c.do(func() { c.fail(err) })
		return err
	}

	c.do(func() {
		c.state = StateConnected
		c.refreshRoster()
		c.notify()
	})
	log.Info().Str("module", "core.session").Msg("connected")

	// Permission was checked above; a broken audio path here ends the
	// session (enableMic tears everything down on failure).
	if err := c.enableMic(ctx, true); err != nil {
		return err
	}

	c.flushBootstrap(ctx)
	return nil
}

// Disconnect releases the microphone, drops the transport and resets
// the session. Idempotent and safe in any state.
func (c *Controller) Disconnect(ctx context.Context) {
	var pub TrackPublication
	c.do(func() { pub = c.micPub })
	if pub != nil {
		// The transport may already be tearing down; a failed unpublish
		// is harmless here.
		_ = c.transport.UnpublishTrack(ctx, pub)
	}
	_ = c.audio.Stop()
	_ = c.transport.Disconnect(ctx)

	c.do(func() {
		c.micOn = false
		c.micPub = nil
		c.roster = nil
		c.pending = nil
		c.state = StateDisconnected
		c.notify()
	})
	log.Info().Str("module", "core.session").Msg("disconnected")
}

// SendChat publishes one chat message reliably, fire-and-forget. The
// message is not echoed into the local log; the transport loops it
// back. Empty text is a no-op.
func (c *Controller) SendChat(text, displayName string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	payload := wire.Encode(domain.NewChatMessage(displayName, text))
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := c.transport.PublishData(ctx, payload, wire.TopicChat, true); err != nil {
			log.Warn().Err(err).Str("module", "core.session").Msg("chat publish failed")
			c.post(func() {
				c.lastErr = fmt.Errorf("%w: %v", ErrSendFailed, err)
				c.notify()
			})
		}
	}()
}

// QueueBootstrap stows the one-shot context payload. It is transmitted
// the first time the session reaches connected; if the session is
// already connected it is sent immediately. At most one payload is
// sent per session.
func (c *Controller) QueueBootstrap(p domain.BootstrapPayload) {
	var connected bool
	c.do(func() {
		c.pending = &p
		connected = c.state == StateConnected
	})
	if connected {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			c.flushBootstrap(ctx)
		}()
	}
}

// SendBootstrap publishes a context payload directly on the bootstrap
// topic. Failure is non-fatal: the session stays usable.
func (c *Controller) SendBootstrap(ctx context.Context, p domain.BootstrapPayload) error {
	if err := c.transport.PublishData(ctx, wire.EncodeBootstrap(p), wire.TopicBootstrap, true); err != nil {
		err = fmt.Errorf("%w: %v", ErrBootstrapFailed, err)
		c.do(func() {
			c.lastErr = err
			c.notify()
		})
		return err
	}
	return nil
}

// EnableMicrophone requests permission, activates capture and publishes
// the audio track. Any failure in the sequence is session-compromising:
// the error is recorded and the whole session is torn down.
func (c *Controller) EnableMicrophone(ctx context.Context) error {
	return c.enableMic(ctx, false)
}

// DisableMicrophone unpublishes the retained track and releases the
// capture device. An unpublish failure is reported as a non-fatal
// microphone error; data already flowing is not broken by it.
func (c *Controller) DisableMicrophone(ctx context.Context) {
	var pub TrackPublication
	c.do(func() {
		pub = c.micPub
		c.micPub = nil
		c.micOn = false
		c.notify()
	})
	if pub != nil {
		if err := c.transport.UnpublishTrack(ctx, pub); err != nil {
			log.Warn().Err(err).Str("module", "core.session").Msg("unpublish failed")
			c.post(func() {
				c.lastErr = fmt.Errorf("%w: %v", ErrMicFailed, err)
				c.notify()
			})
		}
	}
	_ = c.audio.Stop()
}

func (c *Controller) enableMic(ctx context.Context, permissionChecked bool) error {
	if !permissionChecked {
		if err := c.perms.RequestCapture(ctx); err != nil {
			return c.micFatal(ctx, fmt.Errorf("%w: %v", ErrMicFailed, err))
		}
	}
	track, err := c.audio.Start(ctx)
	if err != nil {
		return c.micFatal(ctx, fmt.Errorf("%w: capture: %v", ErrMicFailed, err))
	}
	pub, err := c.transport.PublishTrack(ctx, track)
	if err != nil {
		_ = c.audio.Stop()
		return c.micFatal(ctx, fmt.Errorf("%w: publish: %v", ErrMicFailed, err))
	}
	c.do(func() {
		c.micOn = true
		c.micPub = pub
		c.notify()
	})
	log.Info().Str("module", "core.session").Str("pub", pub.SID()).Msg("microphone on")
	return nil
}

// micFatal records the error and ends the session: an audio failure
// mid-call is treated as a broken call.
func (c *Controller) micFatal(ctx context.Context, err error) error {
	log.Error().Err(err).Str("module", "core.session").Msg("microphone failure, ending session")
	_ = c.audio.Stop()
	_ = c.transport.Disconnect(ctx)
	c.do(func() {
		c.micOn = false
		c.micPub = nil
		c.roster = nil
		c.state = StateDisconnected
		c.lastErr = err
		c.notify()
	})
	return err
}

// flushBootstrap transmits the pending payload at most once. The slot
// is claimed before publishing so rapid repeated state callbacks cannot
// double-send.
func (c *Controller) flushBootstrap(ctx context.Context) {
	var p *domain.BootstrapPayload
	c.do(func() {
		if c.bootstrapSent || c.pending == nil {
			return
		}
		p = c.pending
		c.pending = nil
		c.bootstrapSent = true
	})
	if p == nil {
		return
	}
	if err := c.transport.PublishData(ctx, wire.EncodeBootstrap(*p), wire.TopicBootstrap, true); err != nil {
		log.Warn().Err(err).Str("module", "core.session").Msg("bootstrap publish failed")
		c.post(func() {
			c.lastErr = fmt.Errorf("%w: %v", ErrBootstrapFailed, err)
			c.notify()
		})
		return
	}
	log.Info().Str("module", "core.session").Msg("bootstrap payload sent")
}

// --- RoomHandler ---

func (c *Controller) OnStateChanged(oldState, newState TransportState) {
	log.Info().Str("module", "core.session").Str("from", oldState.String()).Str("to", newState.String()).Msg("transport state")
	c.post(func() {
		if newState == TransportDisconnected && c.state == StateConnected {
			c.state = StateDisconnected
			c.micOn = false
			c.micPub = nil
			// the capture device is held open until someone stops it, and
			// after a remote drop nothing else will
			_ = c.audio.Stop()
		}
		c.refreshRoster()
		c.notify()
	})
}

func (c *Controller) OnParticipantJoined(id domain.ParticipantID) {
	c.post(func() {
		c.refreshRoster()
		c.notify()
	})
}

func (c *Controller) OnParticipantLeft(id domain.ParticipantID) {
	c.post(func() {
		c.refreshRoster()
		c.notify()
	})
}

func (c *Controller) OnDataReceived(payload []byte, from domain.ParticipantID, topic string) {
	// A missing topic is chat traffic; the transport does not always
	// supply one for server-originated events. Anything else named is
	// not chat and is not logged.
	if topic != "" && topic != wire.TopicChat {
		return
	}
	m := wire.Decode(payload, c.agentLabel)
	m.Role = domain.RoleFor(m.From, c.localLabel)
	c.post(func() {
		c.messages = append(c.messages, m)
		c.notify()
	})
}

// --- loop-owned helpers ---

func (c *Controller) fail(err error) {
	c.state = StateFailed
	c.lastErr = err
	c.notify()
}

// refreshRoster recomputes the de-duplicated, sorted union of the local
// identity and all known remote identities.
func (c *Controller) refreshRoster() {
	seen := make(map[domain.ParticipantID]struct{})
	var ids []domain.ParticipantID
	add := func(id domain.ParticipantID) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	add(c.transport.LocalIdentity())
	for _, id := range c.transport.RemoteIdentities() {
		add(id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	c.roster = ids
}

func (c *Controller) snapshot() Snapshot {
	return Snapshot{
		State:    c.state,
		Roster:   append([]domain.ParticipantID(nil), c.roster...),
		Messages: append([]domain.ChatMessage(nil), c.messages...),
		MicOn:    c.micOn,
		Err:      c.lastErr,
	}
}

// notify publishes the latest snapshot, replacing any unread one so the
// state loop never blocks on a slow observer.
func (c *Controller) notify() {
	snap := c.snapshot()
	for {
		select {
		case c.updates <- snap:
			return
		default:
			select {
			case <-c.updates:
			default:
			}
		}
	}
}

func hasHost(endpoint string) bool {
	u, err := url.Parse(endpoint)
	return err == nil && u.Hostname() != ""
}
