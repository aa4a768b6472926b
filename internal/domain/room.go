// Package domain contains the watch-party entities: rooms, participants,
// video state, chat, and the playback queue. Types here carry data and
// invariant-preserving mutators; they hold no transport or network state
// (that lives in internal/hub and internal/sfu) — the same separation the
// teacher repo draws between internal/domain and internal/adapters.
package domain

import "sync"

// Room is the aggregate described in spec §3. A single dispatcher actor
// serializes all mutations to one room (spec §5), but Room still carries
// its own RWMutex so that concurrent, non-blocking reads (lobby listing,
// health metrics) never wait on that actor — the same shared-resource
// policy the teacher's core.roomImpl already applies to its member maps,
// generalized here to cover every field a Room owns.
type Room struct {
	mu sync.RWMutex

	code      string
	hostID    string
	createdAt int64
	isHidden  bool

	participants map[string]*Participant
	joinOrder    []string // connection IDs in join order, for host tie-break

	video VideoState

	chatLog []ChatMessage
	queue   []QueueItem

	voiceMembers   map[string]struct{}
	screenSharerID string
}

// NewRoom creates an empty room with the given code, created at createdAt.
func NewRoom(code string, createdAt int64) *Room {
	return &Room{
		code:         code,
		createdAt:    createdAt,
		participants: make(map[string]*Participant),
		video:        NewVideoState(),
		voiceMembers: make(map[string]struct{}),
	}
}

func (r *Room) Code() string { return r.code }

func (r *Room) CreatedAt() int64 { return r.createdAt }

// --- participants ---

// AddParticipant inserts p and, if this is the first participant, makes it
// host. Returns the newly assigned host ID when a host assignment happened
// (i.e. this was the first participant), else "".
func (r *Room) AddParticipant(p *Participant) (assignedHost string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[p.ConnectionID] = p
	r.joinOrder = append(r.joinOrder, p.ConnectionID)
	if r.hostID == "" {
		r.hostID = p.ConnectionID
		assignedHost = p.ConnectionID
	}
	return assignedHost
}

// RemoveParticipant deletes connID and, if it was host, promotes the
// earliest-joined remaining participant (spec §4.1). Returns the departed
// participant (nil if unknown), the new host ID ("" if room is now empty
// or host didn't change), and whether the room is now empty.
func (r *Room) RemoveParticipant(connID string) (departed *Participant, newHostID string, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	departed, ok := r.participants[connID]
	if !ok {
		return nil, "", len(r.participants) == 0
	}
	delete(r.participants, connID)
	for i, id := range r.joinOrder {
		if id == connID {
			r.joinOrder = append(r.joinOrder[:i], r.joinOrder[i+1:]...)
			break
		}
	}
	delete(r.voiceMembers, connID)
	if r.screenSharerID == connID {
		r.screenSharerID = ""
	}

	if len(r.participants) == 0 {
		r.hostID = ""
		return departed, "", true
	}

	if r.hostID == connID {
		// I1: promote the earliest-joined remaining participant.
		r.hostID = r.joinOrder[0]
		newHostID = r.hostID
	}
	return departed, newHostID, false
}

func (r *Room) Participant(connID string) (*Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[connID]
	return p, ok
}

func (r *Room) HostID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hostID
}

func (r *Room) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// Participants returns a stable-ordered snapshot (join order).
func (r *Room) Participants() []*Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Participant, 0, len(r.joinOrder))
	for _, id := range r.joinOrder {
		if p, ok := r.participants[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// OtherParticipantIDs returns every participant's connection ID except except.
func (r *Room) OtherParticipantIDs(except string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.joinOrder))
	for _, id := range r.joinOrder {
		if id != except {
			out = append(out, id)
		}
	}
	return out
}

// --- video state ---

// Video returns a copy of the current video state.
func (r *Room) Video() VideoState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.video
}

// MutateVideo applies fn to the room's video state under the write lock
// and returns the resulting state. The dispatcher's per-room actor is the
// only caller, but the lock still guards concurrent lobby reads.
func (r *Room) MutateVideo(fn func(VideoState) VideoState) VideoState {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.video = fn(r.video)
	return r.video
}

// --- chat ---

func (r *Room) AppendChat(msg ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chatLog = append(r.chatLog, msg)
	if len(r.chatLog) > ChatLogCap {
		r.chatLog = r.chatLog[len(r.chatLog)-ChatLogCap:]
	}
}

func (r *Room) DeleteChat(messageID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.chatLog {
		if m.ID == messageID {
			r.chatLog = append(r.chatLog[:i], r.chatLog[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Room) ChatMessage(messageID string) (ChatMessage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.chatLog {
		if m.ID == messageID {
			return m, true
		}
	}
	return ChatMessage{}, false
}

func (r *Room) ChatLog() []ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ChatMessage, len(r.chatLog))
	copy(out, r.chatLog)
	return out
}

// --- queue ---

// QueuePush appends item; returns false if the queue is at capacity (I-spec
// InvalidInput on overflow).
func (r *Room) QueuePush(item QueueItem) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) >= QueueCap {
		return false
	}
	r.queue = append(r.queue, item)
	return true
}

// QueuePopFront removes and returns the head item, if any.
func (r *Room) QueuePopFront() (QueueItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return QueueItem{}, false
	}
	item := r.queue[0]
	r.queue = r.queue[1:]
	return item, true
}

func (r *Room) QueueRemove(itemID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.queue {
		if it.ID == itemID {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return true
		}
	}
	return false
}

// QueueReorder moves the item with itemID to newIndex (clamped).
func (r *Room) QueueReorder(itemID string, newIndex int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, it := range r.queue {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	item := r.queue[idx]
	r.queue = append(r.queue[:idx], r.queue[idx+1:]...)
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(r.queue) {
		newIndex = len(r.queue)
	}
	r.queue = append(r.queue[:newIndex], append([]QueueItem{item}, r.queue[newIndex:]...)...)
	return true
}

// QueueTakeItem removes and returns a specific item for immediate playback
// (queue:play), leaving the rest of the queue order intact.
func (r *Room) QueueTakeItem(itemID string) (QueueItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.queue {
		if it.ID == itemID {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return it, true
		}
	}
	return QueueItem{}, false
}

// UpdateQueueTitle sets an item's title (used by the oEmbed follow-up).
func (r *Room) UpdateQueueTitle(itemID, title string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.queue {
		if it.ID == itemID {
			r.queue[i].Title = title
			return true
		}
	}
	return false
}

func (r *Room) Queue() []QueueItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]QueueItem, len(r.queue))
	copy(out, r.queue)
	return out
}

func (r *Room) QueueLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.queue)
}

// --- voice membership ---

func (r *Room) VoiceJoin(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voiceMembers[connID] = struct{}{}
}

func (r *Room) VoiceLeave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.voiceMembers, connID)
}

func (r *Room) VoiceMembers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.voiceMembers))
	for id := range r.voiceMembers {
		out = append(out, id)
	}
	return out
}

func (r *Room) InVoice(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.voiceMembers[connID]
	return ok
}

// --- screen share ---

// SetScreenSharer sets the sharer iff no sharer is currently active.
// Returns false (ErrConflict territory) if one is already active.
func (r *Room) SetScreenSharer(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screenSharerID != "" {
		return false
	}
	r.screenSharerID = connID
	return true
}

func (r *Room) ClearScreenSharer(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screenSharerID != connID {
		return false
	}
	r.screenSharerID = ""
	return true
}

func (r *Room) ScreenSharerID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.screenSharerID
}

// --- visibility ---

func (r *Room) SetHidden(hidden bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isHidden = hidden
}

func (r *Room) IsHidden() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isHidden
}
