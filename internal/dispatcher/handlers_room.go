package dispatcher

import "encoding/json"

// handleRoomCreateImmediate handles spec §6 room:create. It runs outside
// any room actor because the room doesn't exist yet — there is nothing
// else that could be racing against it for this brand-new code.
func (d *Dispatcher) handleRoomCreateImmediate(connID string, data json.RawMessage, ackID string) {
	var payload roomCreatePayload
	_ = json.Unmarshal(data, &payload)

	room, participant, err := d.registry.Create(connID, payload.UserName)
	if err != nil {
		d.unicastError(connID, "could not create room")
		return
	}

	d.hub.JoinRoom(connID, room.Code())
	d.hub.Ack(connID, ackID, roomCreateAck{RoomID: room.Code(), UserID: participant.ConnectionID})
	d.hub.Unicast(connID, outRoomState, d.roomStateFor(room))
}

// handleRoomJoin handles spec §6 room:join. The target room already
// exists, so the mutation goes through its actor like everything else.
func (d *Dispatcher) handleRoomJoin(connID string, data json.RawMessage, ackID string) {
	var payload roomJoinPayload
	_ = json.Unmarshal(data, &payload)

	room, ok := d.registry.LookupByCode(payload.RoomID)
	if !ok {
		d.hub.Ack(connID, ackID, roomJoinAck{Success: false, Error: "room not found"})
		return
	}

	d.actorFor(room.Code()).submit(func() {
		joined, participant, err := d.registry.Join(connID, payload.RoomID, payload.UserName)
		if err != nil {
			d.hub.Ack(connID, ackID, roomJoinAck{Success: false, Error: "room not found"})
			return
		}

		d.hub.JoinRoom(connID, joined.Code())
		d.hub.Ack(connID, ackID, roomJoinAck{Success: true, UserID: participant.ConnectionID})
		d.hub.Unicast(connID, outRoomState, d.roomStateFor(joined))

		d.hub.BroadcastRoom(joined.Code(), connID, outRoomUserJoined, userJoinedPayload{
			ID:     participant.ConnectionID,
			Name:   participant.DisplayName,
			Avatar: participant.AvatarEmoji,
		})
		d.systemChat(joined, participant.DisplayName+" joined the room.")

		if sharer := joined.ScreenSharerID(); sharer != "" {
			d.hub.Unicast(sharer, outScreenViewerJoined, screenViewerJoinedPayload{ViewerID: connID})
		}
	})
}
