package dispatcher

import "github.com/watchsync/backend/internal/sfu"

// Inbound event names (spec §6), grouped by prefix.
const (
	evRoomCreate = "room:create"
	evRoomJoin   = "room:join"
	evRoomLeave  = "room:leave"

	evVideoLoad  = "video:load"
	evVideoPlay  = "video:play"
	evVideoPause = "video:pause"
	evVideoSeek  = "video:seek"
	evVideoRate  = "video:rate"
	evVideoEnded = "video:ended"

	evQueueAdd      = "queue:add"
	evQueueRemove   = "queue:remove"
	evQueueReorder  = "queue:reorder"
	evQueuePlay     = "queue:play"
	evQueuePlayNext = "queue:play-next"

	evChatMessage = "chat:message"
	evChatDelete  = "chat:delete"

	evVoiceJoin                = "voice:join"
	evVoiceCreateSendTransport = "voice:create-send-transport"
	evVoiceCreateRecvTransport = "voice:create-recv-transport"
	evVoiceConnectTransport    = "voice:connect-transport"
	evVoiceProduce             = "voice:produce"
	evVoiceConsume             = "voice:consume"
	evVoiceResumeConsumer      = "voice:resume-consumer"
	evVoicePauseProducer       = "voice:pause-producer"
	evVoiceResumeProducer      = "voice:resume-producer"

	evScreenStart        = "screen:start"
	evScreenStop         = "screen:stop"
	evScreenOffer        = "screen:offer"
	evScreenAnswer       = "screen:answer"
	evScreenIceCandidate = "screen:ice-candidate"
)

// Outbound event names.
const (
	outRoomState       = "room:state"
	outRoomUserJoined  = "room:user-joined"
	outRoomUserLeft    = "room:user-left"
	outRoomHostChanged = "room:host-changed"

	outVideoStateUpdate = "video:state-update"
	outVideoLoad        = "video:load"

	outQueueUpdate = "queue:update"

	outChatMessage = "chat:message"
	outChatDelete  = "chat:delete"

	outVoiceUserJoined    = "voice:user-joined"
	outVoiceUserLeft      = "voice:user-left"
	outVoiceNewProducer   = "voice:new-producer"
	outVoiceProducerClose = "voice:producer-closed"

	outScreenStarted      = "screen:started"
	outScreenStopped      = "screen:stopped"
	outScreenViewerJoined = "screen:viewer-joined"

	outError = "error"
)

// --- inbound payloads ---

type roomCreatePayload struct {
	UserName string `json:"userName"`
}

type roomJoinPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type videoLoadPayload struct {
	URL string `json:"url"`
}

type videoPausePayload struct {
	CurrentTime float64 `json:"currentTime"`
}

type videoSeekPayload struct {
	CurrentTime float64 `json:"currentTime"`
}

type videoRatePayload struct {
	Rate float64 `json:"rate"`
}

type queueAddPayload struct {
	URL string `json:"url"`
}

type queueItemRefPayload struct {
	ItemID string `json:"itemId"`
}

type queueReorderPayload struct {
	ItemID   string `json:"itemId"`
	NewIndex int    `json:"newIndex"`
}

type chatMessagePayload struct {
	Text string `json:"text"`
}

type chatDeletePayload struct {
	MessageID string `json:"messageId"`
}

type connectTransportPayload struct {
	TransportID string `json:"transportId"`
}

type producePayload struct {
	Kind string `json:"kind"`
}

type consumePayload struct {
	ProducerOwnerID string `json:"producerOwnerConnectionId"`
	ProducerID      string `json:"producerId"`
}

type resumeConsumerPayload struct {
	ConsumerID string `json:"consumerId"`
}

type screenRelayPayload struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
}

type screenViewerJoinedPayload struct {
	ViewerID string `json:"viewerId"`
}

type screenSharerPayload struct {
	SharerID string `json:"sharerId"`
}

// --- outbound / ack payloads ---

type roomCreateAck struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type roomJoinAck struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

type successAck struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type boolAck struct {
	Connected bool `json:"connected,omitempty"`
	Resumed   bool `json:"resumed,omitempty"`
}

type participantView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type roomStatePayload struct {
	RoomID       string             `json:"roomId"`
	HostID       string             `json:"hostId"`
	Participants []participantView `json:"participants"`
	Video        any                `json:"video"`
	Chat         []domainChatView   `json:"chat"`
	Queue        []domainQueueView  `json:"queue"`
	ScreenSharer string             `json:"screenSharerId,omitempty"`
}

type domainChatView struct {
	ID         string `json:"id"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	Avatar     string `json:"avatar"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
	Kind       string `json:"kind"`
}

type domainQueueView struct {
	ID        string `json:"id"`
	VideoID   string `json:"videoId,omitempty"`
	VideoURL  string `json:"videoUrl"`
	Title     string `json:"title"`
	AdderName string `json:"adderName"`
	AddedAt   int64  `json:"addedAt"`
}

type userJoinedPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type userLeftPayload struct {
	ID string `json:"id"`
}

type chatDeletedPayload struct {
	MessageID string `json:"messageId"`
}

type hostChangedPayload struct {
	HostID string `json:"hostId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type voiceJoinAck struct {
	RTPCapabilities   sfu.RTPCapabilities `json:"rtpCapabilities"`
	ExistingProducers []sfu.ProducerRef   `json:"existingProducers"`
}

type voiceUserPayload struct {
	ConnectionID string `json:"connectionId"`
}

type voiceNewProducerPayload struct {
	ConnectionID string `json:"connectionId"`
	ProducerID   string `json:"producerId"`
}

type voiceProducerClosedPayload struct {
	ConnectionID string `json:"connectionId"`
	ProducerID   string `json:"producerId"`
}
