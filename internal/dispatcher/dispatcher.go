// Package dispatcher is the event dispatcher (spec §4.7): it owns the
// single-writer serialization boundary for each room and is the only
// caller of every other subsystem's mutating operations. It implements
// hub.EventHandler so the connection hub can hand it inbound frames
// without knowing anything about rooms, video, voice, or screen-share.
//
// Serialization is a per-room actor: a goroutine reading a buffered
// channel of closures, grounded on the "per-room actor mailbox"
// resolution spec §9 calls out explicitly, and on the teacher's
// (superseded) core.RoomManager which spawned one `go room.Run()`
// goroutine per room for the same reason — here every mutation to a
// room, not just its own internal loop, goes through that one goroutine.
package dispatcher

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/watchsync/backend/internal/clock"
	"github.com/watchsync/backend/internal/comments"
	"github.com/watchsync/backend/internal/domain"
	"github.com/watchsync/backend/internal/hub"
	"github.com/watchsync/backend/internal/idgen"
	"github.com/watchsync/backend/internal/oembed"
	"github.com/watchsync/backend/internal/registry"
	"github.com/watchsync/backend/internal/screenshare"
	"github.com/watchsync/backend/internal/sfu"
	"github.com/watchsync/backend/internal/video"
)

const mailboxSize = 128

type job func()

// roomActor serializes every mutation to one room onto a single
// goroutine; other rooms' actors run independently and in parallel.
//
// submit and retire share a mutex rather than letting submit send
// straight into the mailbox: a late submit (e.g. an async oEmbed lookup
// landing after the room emptied out) can otherwise race retire's
// close(mailbox) and panic with "send on closed channel." Guarding both
// under the same lock makes a submit that loses the race a silent no-op
// instead.
type roomActor struct {
	mu      sync.Mutex
	mailbox chan job
	retired bool
}

func newRoomActor() *roomActor {
	a := &roomActor{mailbox: make(chan job, mailboxSize)}
	go a.run()
	return a
}

func (a *roomActor) run() {
	for j := range a.mailbox {
		j()
	}
}

func (a *roomActor) submit(j job) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.retired {
		return
	}
	a.mailbox <- j
}

func (a *roomActor) retire() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.retired {
		return
	}
	a.retired = true
	close(a.mailbox)
}

// Dispatcher wires every subsystem together. It is the single
// implementation of hub.EventHandler in the process.
type Dispatcher struct {
	registry *registry.Registry
	hub      *hub.Hub
	sfuMgr   *sfu.Manager
	screen   *screenshare.Coordinator
	oembed   *oembed.Client
	comments *comments.Proxy
	clock    clock.Clock

	mu          sync.Mutex
	actors      map[string]*roomActor
	endedGuards map[string]*video.EndedGuard
}

// New builds a Dispatcher. The hub is wired in afterward via SetHub: the
// hub's constructor needs a hub.EventHandler, and the Dispatcher is that
// handler, so main.go breaks the cycle by constructing the Dispatcher
// first with no hub, then the Hub, then calling SetHub.
func New(reg *registry.Registry, sfuMgr *sfu.Manager, screen *screenshare.Coordinator, oe *oembed.Client, cp *comments.Proxy, c clock.Clock) *Dispatcher {
	return &Dispatcher{
		registry:    reg,
		sfuMgr:      sfuMgr,
		screen:      screen,
		oembed:      oe,
		comments:    cp,
		clock:       c,
		actors:      make(map[string]*roomActor),
		endedGuards: make(map[string]*video.EndedGuard),
	}
}

// SetHub completes construction. Must be called once, before the hub
// accepts any connections.
func (d *Dispatcher) SetHub(h *hub.Hub) { d.hub = h }

// endedGuardFor returns the room's ended-lock debounce guard (spec §4.2,
// §9), creating it on first use. The guard's own timed release runs on a
// separate timer goroutine independent of the room's actor, so it is
// backed by an atomic flag rather than the actor's serialization.
func (d *Dispatcher) endedGuardFor(code string) *video.EndedGuard {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.endedGuards[code]
	if !ok {
		g = &video.EndedGuard{}
		d.endedGuards[code] = g
	}
	return g
}

func (d *Dispatcher) actorFor(code string) *roomActor {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.actors[code]
	if !ok {
		a = newRoomActor()
		d.actors[code] = a
	}
	return a
}

func (d *Dispatcher) retireActor(code string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if a, ok := d.actors[code]; ok {
		a.retire()
		delete(d.actors, code)
	}
	delete(d.endedGuards, code)
}

// submitToExistingActor delivers j to code's actor only if that actor is
// still live in the map. Unlike actorFor, it never creates one — used by
// callbacks that resume work asynchronously (e.g. an oEmbed lookup) after
// losing track of whether the room is still around. Creating a fresh
// actor here for a room that has already been destroyed would leak a
// goroutine that nothing will ever retire, and could have a since-reused
// room code silently adopt it. Returns false if there was nothing to
// deliver to.
func (d *Dispatcher) submitToExistingActor(code string, j job) bool {
	d.mu.Lock()
	a, ok := d.actors[code]
	d.mu.Unlock()
	if !ok {
		return false
	}
	a.submit(j)
	return true
}

// OnConnect implements hub.EventHandler. There is nothing to do until the
// connection sends room:create or room:join.
func (d *Dispatcher) OnConnect(connID string) {}

// OnDisconnect implements hub.EventHandler: runs the same departure
// sequence as an explicit room:leave (spec §5 "cleanup on disconnect is
// synchronous relative to the room's dispatcher queue").
func (d *Dispatcher) OnDisconnect(connID string) {
	room, ok := d.registry.Lookup(connID)
	if !ok {
		return
	}
	d.actorFor(room.Code()).submit(func() {
		d.runLeave(room, connID)
	})
}

// HandleEvent implements hub.EventHandler.
func (d *Dispatcher) HandleEvent(connID, event string, data json.RawMessage, ackID string) {
	if event == evRoomCreate {
		d.handleRoomCreateImmediate(connID, data, ackID)
		return
	}

	room, ok := d.registry.Lookup(connID)
	if !ok && event != evRoomJoin {
		log.Debug().Str("module", "dispatcher").Str("event", event).Str("conn_id", connID).Msg("dropping event from connection with no room")
		return
	}

	if event == evRoomJoin {
		d.handleRoomJoin(connID, data, ackID)
		return
	}

	d.actorFor(room.Code()).submit(func() {
		d.dispatch(room, connID, event, data, ackID)
	})
}

func (d *Dispatcher) dispatch(room *domain.Room, connID, event string, data json.RawMessage, ackID string) {
	switch event {
	case evRoomLeave:
		d.runLeave(room, connID)
	case evVideoLoad:
		d.handleVideoLoad(room, connID, data)
	case evVideoPlay:
		d.handleVideoPlay(room, connID)
	case evVideoPause:
		d.handleVideoPause(room, connID, data)
	case evVideoSeek:
		d.handleVideoSeek(room, connID, data)
	case evVideoRate:
		d.handleVideoRate(room, connID, data)
	case evVideoEnded:
		d.handleVideoEnded(room, connID)
	case evQueueAdd:
		d.handleQueueAdd(room, connID, data, ackID)
	case evQueueRemove:
		d.handleQueueRemove(room, connID, data)
	case evQueueReorder:
		d.handleQueueReorder(room, connID, data)
	case evQueuePlay:
		d.handleQueuePlay(room, connID, data)
	case evQueuePlayNext:
		d.handleQueuePlayNext(room, connID)
	case evChatMessage:
		d.handleChatMessage(room, connID, data)
	case evChatDelete:
		d.handleChatDelete(room, connID, data)
	case evVoiceJoin:
		d.handleVoiceJoin(room, connID, ackID)
	case evVoiceCreateSendTransport:
		d.handleVoiceCreateSendTransport(room, connID, ackID)
	case evVoiceCreateRecvTransport:
		d.handleVoiceCreateRecvTransport(room, connID, ackID)
	case evVoiceConnectTransport:
		d.handleVoiceConnectTransport(room, connID, data, ackID)
	case evVoiceProduce:
		d.handleVoiceProduce(room, connID, data, ackID)
	case evVoiceConsume:
		d.handleVoiceConsume(room, connID, data, ackID)
	case evVoiceResumeConsumer:
		d.handleVoiceResumeConsumer(room, connID, data, ackID)
	case evVoicePauseProducer:
		d.handleVoiceSetProducerPaused(room, connID, true)
	case evVoiceResumeProducer:
		d.handleVoiceSetProducerPaused(room, connID, false)
	case evScreenStart:
		d.handleScreenStart(room, connID)
	case evScreenStop:
		d.handleScreenStop(room, connID)
	case evScreenOffer, evScreenAnswer, evScreenIceCandidate:
		d.handleScreenRelay(room, connID, event, data)
	default:
		log.Warn().Str("module", "dispatcher").Str("event", event).Msg("dropping unknown event")
	}
}

// --- shared helpers ---

func (d *Dispatcher) unicastError(connID, message string) {
	d.hub.Unicast(connID, outError, errorPayload{Message: message})
}

func (d *Dispatcher) systemChat(room *domain.Room, text string) {
	msg := domain.ChatMessage{
		ID:         idgen.NewID(),
		AuthorID:   domain.SystemAuthorID,
		AuthorName: "system",
		Text:       text,
		Timestamp:  d.clock.NowMillis(),
		Kind:       domain.ChatKindSystem,
	}
	room.AppendChat(msg)
	d.hub.BroadcastRoom(room.Code(), "", outChatMessage, chatView(msg))
}

func chatView(m domain.ChatMessage) domainChatView {
	return domainChatView{
		ID:         m.ID,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Avatar:     m.Avatar,
		Text:       m.Text,
		Timestamp:  m.Timestamp,
		Kind:       string(m.Kind),
	}
}

func queueView(it domain.QueueItem) domainQueueView {
	return domainQueueView{
		ID:        it.ID,
		VideoID:   it.VideoID,
		VideoURL:  it.VideoURL,
		Title:     it.Title,
		AdderName: it.AdderName,
		AddedAt:   it.AddedAt,
	}
}

func (d *Dispatcher) broadcastQueueUpdate(room *domain.Room) {
	items := room.Queue()
	views := make([]domainQueueView, 0, len(items))
	for _, it := range items {
		views = append(views, queueView(it))
	}
	d.hub.BroadcastRoom(room.Code(), "", outQueueUpdate, views)
}

func (d *Dispatcher) broadcastVideoState(room *domain.Room, event string) {
	snapshot := room.Video().Snapshot(d.clock.NowMillis())
	d.hub.BroadcastRoom(room.Code(), "", event, snapshot)
}

// roomStateFor builds the full-snapshot payload spec §6 "room:state (full
// snapshot on join)" describes.
func (d *Dispatcher) roomStateFor(room *domain.Room) roomStatePayload {
	participants := room.Participants()
	views := make([]participantView, 0, len(participants))
	for _, p := range participants {
		views = append(views, participantView{ID: p.ConnectionID, Name: p.DisplayName, Avatar: p.AvatarEmoji})
	}
	chatLog := room.ChatLog()
	chatViews := make([]domainChatView, 0, len(chatLog))
	for _, m := range chatLog {
		chatViews = append(chatViews, chatView(m))
	}
	queue := room.Queue()
	queueViews := make([]domainQueueView, 0, len(queue))
	for _, it := range queue {
		queueViews = append(queueViews, queueView(it))
	}
	return roomStatePayload{
		RoomID:       room.Code(),
		HostID:       room.HostID(),
		Participants: views,
		Video:        room.Video().Snapshot(d.clock.NowMillis()),
		Chat:         chatViews,
		Queue:        queueViews,
		ScreenSharer: room.ScreenSharerID(),
	}
}

// runLeave is the shared body of room:leave and disconnect teardown (spec
// §5: "voice teardown first ... then room departure").
func (d *Dispatcher) runLeave(room *domain.Room, connID string) {
	d.teardownVoice(room, connID)
	d.screen.Stop(room, connID)

	_, departed, newHostID, empty, err := d.registry.Leave(connID)
	if err != nil || departed == nil {
		return
	}
	d.hub.LeaveRoom(connID)
	d.hub.BroadcastRoom(room.Code(), "", outRoomUserLeft, userLeftPayload{ID: connID})

	if empty {
		d.registry.DestroyRoom(room.Code())
		d.retireActor(room.Code())
		return
	}

	if newHostID != "" {
		newHostName := newHostID
		if newHost, ok := room.Participant(newHostID); ok {
			newHostName = newHost.DisplayName
		}
		d.systemChat(room, departed.DisplayName+" left. "+newHostName+" is now the host.")
		d.hub.BroadcastRoom(room.Code(), "", outRoomHostChanged, hostChangedPayload{HostID: newHostID})
	}
}
