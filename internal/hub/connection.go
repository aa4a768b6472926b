package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrBackpressure is returned when a connection's outbound queue is full;
// per spec §5 ("backpressure") the hub drops rather than blocks the room.
var ErrBackpressure = errors.New("hub: backpressure")

const (
	writeWait      = 5 * time.Second
	sendBufferSize = 64
)

// Envelope is the wire-protocol message shape: every inbound/outbound
// event has a name and a structured payload; AckID correlates a reply to
// a specific client request (spec §6 "some events carry a callback").
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	AckID string          `json:"ackId,omitempty"`
}

// Conn is a single client connection's transport endpoint. It owns the
// websocket and its send queue; TrySend never blocks (spec §5
// backpressure policy) — when the queue is full the message is dropped
// instead of stalling the room; the connection stays open.
type Conn struct {
	ID string

	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newConn(id string, ws *websocket.Conn) *Conn {
	return &Conn{
		ID:   id,
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
	}
}

// TrySend enqueues data for the write pump. Never blocks.
func (c *Conn) TrySend(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("hub: connection closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// SendEnvelope marshals and enqueues an envelope.
func (c *Conn) SendEnvelope(env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.TrySend(b)
}

// Close idempotently closes the connection's send queue and socket.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	_ = c.ws.Close()
}

func (c *Conn) writePump() {
	for data := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Str("module", "hub").Str("conn_id", c.ID).Err(err).Msg("write pump error, closing")
			c.Close()
			return
		}
	}
}
