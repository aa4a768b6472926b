package dispatcher

import (
	"encoding/json"

	"github.com/watchsync/backend/internal/domain"
)

func (d *Dispatcher) handleScreenStart(room *domain.Room, connID string) {
	if err := d.screen.Start(room, connID); err != nil {
		d.unicastError(connID, "someone else is already sharing their screen")
		return
	}
	d.hub.BroadcastRoom(room.Code(), connID, outScreenStarted, screenSharerPayload{SharerID: connID})
	for _, other := range room.OtherParticipantIDs(connID) {
		d.hub.Unicast(connID, outScreenViewerJoined, screenViewerJoinedPayload{ViewerID: other})
	}
}

func (d *Dispatcher) handleScreenStop(room *domain.Room, connID string) {
	if d.screen.Stop(room, connID) {
		d.hub.BroadcastRoom(room.Code(), connID, outScreenStopped, screenSharerPayload{SharerID: connID})
	}
}

// handleScreenRelay is spec §4.5's pure relay: forward to data.to with
// from = sender, never inspecting the rest of the payload.
func (d *Dispatcher) handleScreenRelay(room *domain.Room, connID, event string, data json.RawMessage) {
	var payload screenRelayPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.To == "" {
		return
	}
	if _, ok := room.Participant(payload.To); !ok {
		return
	}

	var out map[string]json.RawMessage
	_ = json.Unmarshal(data, &out)
	if out == nil {
		out = make(map[string]json.RawMessage)
	}
	fromRaw, _ := json.Marshal(connID)
	out["from"] = fromRaw

	d.hub.Unicast(payload.To, event, out)
}
