// Package ws implements core.RoomTransport over one websocket carrying
// JSON envelopes, with a pion PeerConnection for the audio leg.
package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("backpressure")

const (
	writeWait  = 5 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 32
)

// wsConn wraps one websocket with a buffered outbound queue. Slow
// writes shed via TrySend instead of blocking callers.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

func (c *wsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) TrySendJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.TrySend(b)
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "ws").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump ping error")
				return
			}
		}
	}
}
