package dispatcher

import (
	"encoding/json"
	"strings"

	"github.com/watchsync/backend/internal/domain"
	"github.com/watchsync/backend/internal/idgen"
)

func (d *Dispatcher) handleChatMessage(room *domain.Room, connID string, data json.RawMessage) {
	var payload chatMessagePayload
	_ = json.Unmarshal(data, &payload)

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return
	}
	if len(text) > domain.MaxChatTextLen {
		text = text[:domain.MaxChatTextLen]
	}

	author, ok := room.Participant(connID)
	if !ok {
		return
	}

	msg := domain.ChatMessage{
		ID:         idgen.NewID(),
		AuthorID:   connID,
		AuthorName: author.DisplayName,
		Avatar:     author.AvatarEmoji,
		Text:       text,
		Timestamp:  d.clock.NowMillis(),
		Kind:       domain.ChatKindMessage,
	}
	room.AppendChat(msg)
	d.hub.BroadcastRoom(room.Code(), "", outChatMessage, chatView(msg))
}

// handleChatDelete implements spec §3 "immutable except for hard delete
// by its author or the room host."
func (d *Dispatcher) handleChatDelete(room *domain.Room, connID string, data json.RawMessage) {
	var payload chatDeletePayload
	_ = json.Unmarshal(data, &payload)

	msg, ok := room.ChatMessage(payload.MessageID)
	if !ok {
		return
	}
	if msg.AuthorID != connID && room.HostID() != connID {
		d.unicastError(connID, "not allowed to delete that message")
		return
	}
	if room.DeleteChat(payload.MessageID) {
		d.hub.BroadcastRoom(room.Code(), "", outChatDelete, chatDeletedPayload{MessageID: payload.MessageID})
	}
}
