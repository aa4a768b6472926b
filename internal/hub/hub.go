// Package hub is the connection hub (spec §4.6): it owns live client
// connections, their membership in per-room broadcast groups, and the
// send primitives (broadcast, unicast, ack) the dispatcher uses to talk
// back to clients. It knows nothing about rooms, video state, or voice —
// only connections and where to route bytes — grounded on the teacher's
// adapters/signal (WsSignalConn + write/read pump pair) promoted from a
// single hard-wired controller into a standalone, interface-driven type.
package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// EventHandler is implemented by the dispatcher. HandleEvent is called
// synchronously on the hub's read-pump goroutine for connID; it must not
// block on anything slower than the dispatcher's own per-room actor send.
// When ackID is non-empty and the handler produces an ack payload, the hub
// sends it back as an "ack" envelope tagged with that ackID.
type EventHandler interface {
	HandleEvent(connID, event string, data json.RawMessage, ackID string)
	OnConnect(connID string)
	OnDisconnect(connID string)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub maintains the set of live connections and their room group
// membership, and implements broadcast/unicast/ack delivery.
type Hub struct {
	handler EventHandler
	limiter *rateLimiter

	mu       sync.RWMutex
	conns    map[string]*Conn
	roomOf   map[string]string
	roomConn map[string]map[string]struct{}
}

func New(handler EventHandler) *Hub {
	return &Hub{
		handler:  handler,
		limiter:  newRateLimiter(eventLimit, eventWindow),
		conns:    make(map[string]*Conn),
		roomOf:   make(map[string]string),
		roomConn: make(map[string]map[string]struct{}),
	}
}

// Upgrade promotes an HTTP request to a WebSocket connection identified by
// connID (the caller — httpapi's /ws handler, which mints a fresh ID per
// socket — decides identity), registers it, and starts its read/write pumps.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, connID string) error {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newConn(connID, ws)

	h.mu.Lock()
	h.conns[connID] = c
	h.mu.Unlock()

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go c.writePump()
	go h.pingLoop(c)
	h.handler.OnConnect(connID)
	go h.readPump(c)
	return nil
}

func (h *Hub) pingLoop(c *Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
			c.Close()
			return
		}
	}
}

func (h *Hub) readPump(c *Conn) {
	defer h.removeConn(c.ID)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			log.Debug().Str("module", "hub").Str("conn_id", c.ID).Err(err).Msg("read pump closing")
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warn().Str("module", "hub").Str("conn_id", c.ID).Err(err).Msg("dropping unparseable event")
			continue
		}
		if env.Event == "" {
			log.Warn().Str("module", "hub").Str("conn_id", c.ID).Msg("dropping event with empty name")
			continue
		}
		if !h.limiter.allow(c.ID) {
			log.Warn().Str("module", "hub").Str("conn_id", c.ID).Str("event", env.Event).Msg("dropping event over rate limit")
			continue
		}
		h.handler.HandleEvent(c.ID, env.Event, env.Data, env.AckID)
	}
}

func (h *Hub) removeConn(connID string) {
	h.limiter.forget(connID)
	h.mu.Lock()
	c, ok := h.conns[connID]
	delete(h.conns, connID)
	if room, inRoom := h.roomOf[connID]; inRoom {
		delete(h.roomOf, connID)
		if set, ok := h.roomConn[room]; ok {
			delete(set, connID)
			if len(set) == 0 {
				delete(h.roomConn, room)
			}
		}
	}
	h.mu.Unlock()
	if ok {
		c.Close()
	}
	h.handler.OnDisconnect(connID)
}

// JoinRoom records connID's membership in roomCode's broadcast group.
func (h *Hub) JoinRoom(connID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roomOf[connID] = roomCode
	set, ok := h.roomConn[roomCode]
	if !ok {
		set = make(map[string]struct{})
		h.roomConn[roomCode] = set
	}
	set[connID] = struct{}{}
}

// LeaveRoom removes connID from whatever room group it was in.
func (h *Hub) LeaveRoom(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.roomOf[connID]
	if !ok {
		return
	}
	delete(h.roomOf, connID)
	if set, ok := h.roomConn[room]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(h.roomConn, room)
		}
	}
}

// Unicast sends event/payload to exactly one connection. No-op if the
// connection is gone (e.g. it disconnected mid-handler).
func (h *Hub) Unicast(connID, event string, payload any) {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.send(c, event, "", payload)
}

// Ack replies to a specific client request. No-op if ackID is empty (the
// request carried no callback) or the connection is gone.
func (h *Hub) Ack(connID, ackID string, payload any) {
	if ackID == "" {
		return
	}
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.send(c, "ack", ackID, payload)
}

// BroadcastRoom sends event/payload to every connection in roomCode's
// group except excludeConnID (pass "" to exclude no one).
func (h *Hub) BroadcastRoom(roomCode, excludeConnID, event string, payload any) {
	h.mu.RLock()
	set := h.roomConn[roomCode]
	targets := make([]*Conn, 0, len(set))
	for connID := range set {
		if connID == excludeConnID {
			continue
		}
		if c, ok := h.conns[connID]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.send(c, event, "", payload)
	}
}

// BroadcastTo sends event/payload to an explicit set of connection IDs.
func (h *Hub) BroadcastTo(connIDs []string, event string, payload any) {
	h.mu.RLock()
	targets := make([]*Conn, 0, len(connIDs))
	for _, id := range connIDs {
		if c, ok := h.conns[id]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.send(c, event, "", payload)
	}
}

func (h *Hub) send(c *Conn, event, ackID string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			log.Error().Str("module", "hub").Err(err).Msg("marshal outbound payload")
			return
		}
		raw = b
	}
	if err := c.SendEnvelope(Envelope{Event: event, Data: raw, AckID: ackID}); err != nil {
		log.Debug().Str("module", "hub").Str("conn_id", c.ID).Err(err).Msg("send failed, dropping")
	}
}

// Disconnect forcibly closes a connection (used by policy-driven kicks).
func (h *Hub) Disconnect(connID string) {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if ok {
		c.Close()
	}
}
