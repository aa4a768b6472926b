package sfu

import "sync"

// Router is the per-room audio router (spec §4.4 "SFU Room"): bound to
// exactly one worker for its lifetime, holding one peer per participant
// currently in the voice session. Created lazily on the first
// voice:join for a room, destroyed when its peer set empties.
type Router struct {
	RoomCode string
	Worker   Worker

	mu    sync.Mutex
	peers map[string]*Peer
}

func newRouter(roomCode string, worker Worker) *Router {
	return &Router{
		RoomCode: roomCode,
		Worker:   worker,
		peers:    make(map[string]*Peer),
	}
}

func (r *Router) ensurePeer(connID string) *Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[connID]
	if !ok {
		p = newPeer(connID)
		r.peers[connID] = p
	}
	return p
}

func (r *Router) peer(connID string) (*Peer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[connID]
	return p, ok
}

func (r *Router) removePeer(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, connID)
}

func (r *Router) isEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers) == 0
}

// existingProducers lists every other peer's active producer, for the
// voice:join ack (spec §4.4 step 1).
func (r *Router) existingProducers(except string) []ProducerRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ProducerRef, 0, len(r.peers))
	for connID, p := range r.peers {
		if connID == except || p.producer == nil {
			continue
		}
		out = append(out, ProducerRef{ConnectionID: connID, ProducerID: p.producer.id})
	}
	return out
}

// consumerOwners returns, for a given producer ID, every
// (ownerConnID, consumerID) pair subscribed to it — used to fan out
// voice:producer-closed on producer close.
func (r *Router) consumerOwners(producerID string) []struct {
	ConnID     string
	ConsumerID string
} {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []struct {
		ConnID     string
		ConsumerID string
	}
	for connID, p := range r.peers {
		for cid, c := range p.consumers {
			if c.producerID == producerID {
				out = append(out, struct {
					ConnID     string
					ConsumerID string
				}{connID, cid})
			}
		}
	}
	return out
}
