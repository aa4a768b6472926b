// Package registry is the process-wide room registry (spec §4.1):
// room-code minting, create/join/leave, lookup by connection or code, and
// the lobby listing. It owns room lifecycle (creation and destruction);
// it does not own connections or SFU/screen-share state — those are
// reconciled by internal/dispatcher, which calls back into the registry
// once its own teardown for a leaving participant has completed.
//
// Create picks a code and inserts the room under a single write lock,
// retrying on code collision, adapted from the teacher's
// app.RoomManagerImpl.GetOrCreate; reads (EnumerateVisible) take
// only a read lock, satisfying the "lobby enumeration must be non-blocking
// relative to per-room mutation" requirement in spec §5.
package registry

import (
	"sync"

	"github.com/watchsync/backend/internal/clock"
	"github.com/watchsync/backend/internal/domain"
	"github.com/watchsync/backend/internal/idgen"
)

const maxCodeAttempts = 64

// Registry is the room registry.
type Registry struct {
	clock clock.Clock

	mu       sync.RWMutex
	rooms    map[string]*domain.Room
	connRoom map[string]string // connection ID -> room code
}

func New(c clock.Clock) *Registry {
	return &Registry{
		clock:    c,
		rooms:    make(map[string]*domain.Room),
		connRoom: make(map[string]string),
	}
}

// Create allocates a fresh room code, creates the room, and adds connID
// (the hub's already-assigned connection identity, spec §4.6: "the
// participant ID inside a room" is the connection ID) as its first
// participant, and thus host. Returns NotFound never; it can only fail if
// code allocation is exhausted, which in practice means maxCodeAttempts
// collisions in a row against a saturated keyspace.
func (r *Registry) Create(connID, displayName string) (room *domain.Room, participant *domain.Participant, err error) {
	now := r.clock.NowMillis()

	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.allocateCodeLocked()
	if err != nil {
		return nil, nil, err
	}

	room = domain.NewRoom(code, now)
	participant = domain.NewParticipant(connID, code, displayName, now, 0)
	room.AddParticipant(participant)

	r.rooms[code] = room
	r.connRoom[connID] = code
	return room, participant, nil
}

// allocateCodeLocked must be called with r.mu held for writing.
func (r *Registry) allocateCodeLocked() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := idgen.NewRoomCode()
		if _, exists := r.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", domain.ErrConflict
}

// Join adds connID to an existing room as a new participant. Fails with
// domain.ErrNotFound when roomCode is unknown.
func (r *Registry) Join(connID, roomCode, displayName string) (room *domain.Room, participant *domain.Participant, err error) {
	now := r.clock.NowMillis()

	r.mu.Lock()
	room, ok := r.rooms[roomCode]
	if !ok {
		r.mu.Unlock()
		return nil, nil, domain.ErrNotFound
	}
	r.connRoom[connID] = roomCode
	r.mu.Unlock()

	poolIndex := room.ParticipantCount()
	participant = domain.NewParticipant(connID, roomCode, displayName, now, poolIndex)
	room.AddParticipant(participant)
	return room, participant, nil
}

// Leave removes connID from its room. It does not destroy an emptied
// room — that is Registry.DestroyRoom, called by the dispatcher once SFU
// and screen-share teardown for the room have both completed (spec I5).
func (r *Registry) Leave(connID string) (room *domain.Room, departed *domain.Participant, newHostID string, becameEmpty bool, err error) {
	r.mu.RLock()
	code, ok := r.connRoom[connID]
	var rm *domain.Room
	if ok {
		rm = r.rooms[code]
	}
	r.mu.RUnlock()
	if !ok || rm == nil {
		return nil, nil, "", false, domain.ErrNotFound
	}

	departed, newHostID, becameEmpty = rm.RemoveParticipant(connID)

	r.mu.Lock()
	delete(r.connRoom, connID)
	r.mu.Unlock()

	return rm, departed, newHostID, becameEmpty, nil
}

// DestroyRoom removes a room from the registry, freeing its code for
// reuse. Safe to call on an already-destroyed or unknown code.
func (r *Registry) DestroyRoom(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
}

// Lookup resolves the room owning connID.
func (r *Registry) Lookup(connID string) (*domain.Room, bool) {
	r.mu.RLock()
	code, ok := r.connRoom[connID]
	if !ok {
		r.mu.RUnlock()
		return nil, false
	}
	room, ok := r.rooms[code]
	r.mu.RUnlock()
	return room, ok
}

// LookupByCode resolves a room directly by its code.
func (r *Registry) LookupByCode(code string) (*domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

// RoomSummary is the lobby-listing view of a room (spec §4.1 enumerateVisible).
type RoomSummary struct {
	Code         string
	Participants []string
	VideoTitle   string
	VideoURL     string
}

// EnumerateVisible snapshots every non-hidden room for the public lobby.
func (r *Registry) EnumerateVisible() []RoomSummary {
	r.mu.RLock()
	rooms := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		if room.IsHidden() {
			continue
		}
		names := make([]string, 0)
		for _, p := range room.Participants() {
			names = append(names, p.DisplayName)
		}
		v := room.Video()
		out = append(out, RoomSummary{
			Code:         room.Code(),
			Participants: names,
			VideoTitle:   v.VideoID,
			VideoURL:     v.VideoURL,
		})
	}
	return out
}

// AllRooms snapshots every room, hidden or not — used by the heartbeat
// ticker, which has no business filtering on visibility.
func (r *Registry) AllRooms() []*domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out
}

// RoomCount and ParticipantCount back the /health endpoint.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *Registry) ParticipantCount() int {
	r.mu.RLock()
	rooms := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	total := 0
	for _, room := range rooms {
		total += room.ParticipantCount()
	}
	return total
}
