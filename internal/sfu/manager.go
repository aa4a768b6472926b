package sfu

import (
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/watchsync/backend/internal/domain"
	"github.com/watchsync/backend/internal/idgen"
)

// Manager is the SFU control plane's top-level entry point: one worker
// pool, one router per active room, created and destroyed as voice
// sessions come and go. It is the generalized successor to the teacher's
// sfu.RelayManager (one relay per room) — here, one Router per room,
// each owning N peers instead of one shared relay.
type Manager struct {
	pool *WorkerPool

	mu      sync.Mutex
	routers map[string]*Router
}

func NewManager(pool *WorkerPool) *Manager {
	return &Manager{pool: pool, routers: make(map[string]*Router)}
}

func (m *Manager) ensureRouter(roomCode string) *Router {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routers[roomCode]
	if !ok {
		r = newRouter(roomCode, m.pool.Acquire())
		m.routers[roomCode] = r
	}
	return r
}

func (m *Manager) router(roomCode string) (*Router, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routers[roomCode]
	return r, ok
}

func (m *Manager) destroyRouterIfEmpty(roomCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.routers[roomCode]; ok && r.isEmpty() {
		delete(m.routers, roomCode)
	}
}

// Join is spec §4.4 step 1: ensure router and peer, return this peer's
// RTP capabilities and every other participant's active producer.
func (m *Manager) Join(roomCode, connID string) (RTPCapabilities, []ProducerRef) {
	r := m.ensureRouter(roomCode)
	r.ensurePeer(connID)
	caps := RTPCapabilities{Codecs: []webrtc.RTPCodecCapability{OpusCapability}}
	return caps, r.existingProducers(connID)
}

// CreateSendTransport is spec §4.4 step 2.
func (m *Manager) CreateSendTransport(roomCode, connID string) (TransportParams, error) {
	r, ok := m.router(roomCode)
	if !ok {
		return TransportParams{}, domain.ErrNotFound
	}
	p := r.ensurePeer(connID)
	params := TransportParams{TransportID: idgen.NewID(), InitialAvailableOutgoing: initialOutgoingBitrate}
	p.send = &transportSlot{params: params}
	return params, nil
}

// CreateRecvTransport is spec §4.4 step 3.
func (m *Manager) CreateRecvTransport(roomCode, connID string) (TransportParams, error) {
	r, ok := m.router(roomCode)
	if !ok {
		return TransportParams{}, domain.ErrNotFound
	}
	p := r.ensurePeer(connID)
	params := TransportParams{TransportID: idgen.NewID()}
	p.recv = &transportSlot{params: params}
	return params, nil
}

// ConnectTransport is spec §4.4 step 4: mark one of the peer's
// transports connected. Which one is identified by transportID.
func (m *Manager) ConnectTransport(roomCode, connID, transportID string) (bool, error) {
	r, ok := m.router(roomCode)
	if !ok {
		return false, domain.ErrNotFound
	}
	p, ok := r.peer(connID)
	if !ok {
		return false, domain.ErrNotFound
	}
	switch {
	case p.send != nil && p.send.params.TransportID == transportID:
		p.send.connected = true
		return true, nil
	case p.recv != nil && p.recv.params.TransportID == transportID:
		p.recv.connected = true
		return true, nil
	default:
		return false, domain.ErrNotFound
	}
}

// Produce is spec §4.4 step 5. The caller (dispatcher) is responsible
// for broadcasting voice:new-producer to the rest of the room once this
// returns; Manager only tracks state.
func (m *Manager) Produce(roomCode, connID string) (ProducerParams, error) {
	r, ok := m.router(roomCode)
	if !ok {
		return ProducerParams{}, domain.ErrNotFound
	}
	p, ok := r.peer(connID)
	if !ok || p.send == nil {
		return ProducerParams{}, domain.ErrConflict
	}
	if p.producer != nil {
		// Replacing an existing producer: close it before the new one
		// takes over (spec §4.4 "cancellation / partial failure").
		p.producer = nil
	}
	p.producer = &producerSlot{id: idgen.NewID()}
	return ProducerParams{ProducerID: p.producer.id}, nil
}

// Consume is spec §4.4 step 6: create a paused consumer on the caller's
// recv transport for producerID, owned by producerOwnerConnID.
func (m *Manager) Consume(roomCode, callerConnID, producerOwnerConnID, producerID string) (ConsumerParams, error) {
	r, ok := m.router(roomCode)
	if !ok {
		return ConsumerParams{}, domain.ErrNotFound
	}
	caller, ok := r.peer(callerConnID)
	if !ok || caller.recv == nil {
		return ConsumerParams{}, domain.ErrConflict
	}
	owner, ok := r.peer(producerOwnerConnID)
	if !ok || owner.producer == nil || owner.producer.id != producerID {
		return ConsumerParams{}, domain.ErrNotFound
	}
	c := &consumerSlot{id: idgen.NewID(), producerID: producerID, fromPeer: producerOwnerConnID, paused: true}
	caller.consumers[c.id] = c
	return ConsumerParams{ConsumerID: c.id, ProducerID: producerID, Kind: "audio", RTPCapability: OpusCapability}, nil
}

// ResumeConsumer is spec §4.4 step 7.
func (m *Manager) ResumeConsumer(roomCode, connID, consumerID string) (bool, error) {
	r, ok := m.router(roomCode)
	if !ok {
		return false, domain.ErrNotFound
	}
	p, ok := r.peer(connID)
	if !ok {
		return false, domain.ErrNotFound
	}
	c, ok := p.consumers[consumerID]
	if !ok {
		return false, domain.ErrNotFound
	}
	c.paused = false
	return true, nil
}

// SetProducerPaused is spec §4.4 step 8 (mute toggle).
func (m *Manager) SetProducerPaused(roomCode, connID string, paused bool) error {
	r, ok := m.router(roomCode)
	if !ok {
		return domain.ErrNotFound
	}
	p, ok := r.peer(connID)
	if !ok || p.producer == nil {
		return domain.ErrNotFound
	}
	p.producer.paused = paused
	return nil
}

// CloseResult tells the dispatcher what fanout to emit after Leave.
type CloseResult struct {
	ProducerID     string
	ProducerClosed bool
	ConsumerOwners []struct {
		ConnID     string
		ConsumerID string
	}
}

// Leave is spec §4.4 "close propagation": close consumers, producer,
// both transports, in that order, then drop the peer. If the router's
// peer set is now empty, the router itself is destroyed.
func (m *Manager) Leave(roomCode, connID string) CloseResult {
	r, ok := m.router(roomCode)
	if !ok {
		return CloseResult{}
	}
	p, ok := r.peer(connID)
	if !ok {
		return CloseResult{}
	}

	var result CloseResult
	if p.producer != nil {
		result.ProducerID = p.producer.id
		result.ProducerClosed = true
		result.ConsumerOwners = r.consumerOwners(p.producer.id)
	}
	p.consumers = make(map[string]*consumerSlot)
	p.producer = nil
	p.send = nil
	p.recv = nil

	r.removePeer(connID)
	m.destroyRouterIfEmpty(roomCode)
	return result
}
