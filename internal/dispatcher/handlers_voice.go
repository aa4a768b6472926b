package dispatcher

import (
	"encoding/json"

	"github.com/watchsync/backend/internal/domain"
)

func (d *Dispatcher) handleVoiceJoin(room *domain.Room, connID string, ackID string) {
	room.VoiceJoin(connID)
	caps, existing := d.sfuMgr.Join(room.Code(), connID)
	d.hub.Ack(connID, ackID, voiceJoinAck{RTPCapabilities: caps, ExistingProducers: existing})
	d.hub.BroadcastRoom(room.Code(), connID, outVoiceUserJoined, voiceUserPayload{ConnectionID: connID})
}

func (d *Dispatcher) handleVoiceCreateSendTransport(room *domain.Room, connID string, ackID string) {
	params, err := d.sfuMgr.CreateSendTransport(room.Code(), connID)
	if err != nil {
		d.unicastError(connID, "voice session not ready")
		return
	}
	d.hub.Ack(connID, ackID, params)
}

func (d *Dispatcher) handleVoiceCreateRecvTransport(room *domain.Room, connID string, ackID string) {
	params, err := d.sfuMgr.CreateRecvTransport(room.Code(), connID)
	if err != nil {
		d.unicastError(connID, "voice session not ready")
		return
	}
	d.hub.Ack(connID, ackID, params)
}

func (d *Dispatcher) handleVoiceConnectTransport(room *domain.Room, connID string, data json.RawMessage, ackID string) {
	var payload connectTransportPayload
	_ = json.Unmarshal(data, &payload)

	connected, err := d.sfuMgr.ConnectTransport(room.Code(), connID, payload.TransportID)
	if err != nil {
		d.unicastError(connID, "unknown transport")
		return
	}
	d.hub.Ack(connID, ackID, boolAck{Connected: connected})
}

// handleVoiceProduce is spec §4.4 step 5: create the producer, then
// broadcast voice:new-producer to every other room member so their
// consume flow can start.
func (d *Dispatcher) handleVoiceProduce(room *domain.Room, connID string, data json.RawMessage, ackID string) {
	params, err := d.sfuMgr.Produce(room.Code(), connID)
	if err != nil {
		d.unicastError(connID, "cannot produce without a send transport")
		return
	}
	d.hub.Ack(connID, ackID, params)
	d.hub.BroadcastRoom(room.Code(), connID, outVoiceNewProducer, voiceNewProducerPayload{
		ConnectionID: connID,
		ProducerID:   params.ProducerID,
	})
}

func (d *Dispatcher) handleVoiceConsume(room *domain.Room, connID string, data json.RawMessage, ackID string) {
	var payload consumePayload
	_ = json.Unmarshal(data, &payload)

	params, err := d.sfuMgr.Consume(room.Code(), connID, payload.ProducerOwnerID, payload.ProducerID)
	if err != nil {
		d.unicastError(connID, "cannot consume that producer")
		return
	}
	d.hub.Ack(connID, ackID, params)
}

func (d *Dispatcher) handleVoiceResumeConsumer(room *domain.Room, connID string, data json.RawMessage, ackID string) {
	var payload resumeConsumerPayload
	_ = json.Unmarshal(data, &payload)

	resumed, err := d.sfuMgr.ResumeConsumer(room.Code(), connID, payload.ConsumerID)
	if err != nil {
		d.unicastError(connID, "unknown consumer")
		return
	}
	d.hub.Ack(connID, ackID, boolAck{Resumed: resumed})
}

func (d *Dispatcher) handleVoiceSetProducerPaused(room *domain.Room, connID string, paused bool) {
	_ = d.sfuMgr.SetProducerPaused(room.Code(), connID, paused)
}

// teardownVoice is spec §4.4 "close propagation", invoked by runLeave
// before the participant is actually removed from the room.
func (d *Dispatcher) teardownVoice(room *domain.Room, connID string) {
	if !room.InVoice(connID) {
		return
	}
	result := d.sfuMgr.Leave(room.Code(), connID)
	room.VoiceLeave(connID)

	d.hub.BroadcastRoom(room.Code(), connID, outVoiceUserLeft, voiceUserPayload{ConnectionID: connID})
	if result.ProducerClosed {
		for _, owner := range result.ConsumerOwners {
			d.hub.Unicast(owner.ConnID, outVoiceProducerClose, voiceProducerClosedPayload{
				ConnectionID: connID,
				ProducerID:   result.ProducerID,
			})
		}
	}
}
