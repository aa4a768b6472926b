package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/watchsync/backend/internal/domain"
	"github.com/watchsync/backend/internal/idgen"
	"github.com/watchsync/backend/internal/video"
)

func (d *Dispatcher) handleQueueAdd(room *domain.Room, connID string, data json.RawMessage, ackID string) {
	var payload queueAddPayload
	_ = json.Unmarshal(data, &payload)

	classified, err := video.Classify(payload.URL)
	if err != nil {
		d.hub.Ack(connID, ackID, successAck{Success: false, Error: "could not recognize that url"})
		return
	}

	adder, _ := room.Participant(connID)
	adderName := ""
	if adder != nil {
		adderName = adder.DisplayName
	}

	// The YouTube title lookup is async (fetchQueueTitleAsync below); until
	// it lands, fall back to the video ID for YouTube items and the URL's
	// last path segment for direct ones, so queue:update never ships an
	// empty title.
	title := classified.VideoID
	if title == "" {
		title = video.URLTail(classified.VideoURL)
	}

	item := domain.QueueItem{
		ID:        idgen.NewID(),
		VideoID:   classified.VideoID,
		VideoURL:  classified.VideoURL,
		Title:     title,
		AdderName: adderName,
		AddedAt:   d.clock.NowMillis(),
	}
	if !room.QueuePush(item) {
		d.hub.Ack(connID, ackID, successAck{Success: false, Error: "queue is full"})
		return
	}

	d.hub.Ack(connID, ackID, successAck{Success: true})
	d.broadcastQueueUpdate(room)

	if classified.Type == domain.VideoTypeYouTube {
		d.fetchQueueTitleAsync(room, item.ID, classified.VideoID)
	}
}

// fetchQueueTitleAsync runs the oEmbed lookup off the room actor (spec
// §5: "external lookups ... are bounded by a 5s deadline and best-effort")
// and re-enters the actor only to apply the result, so the slow network
// call never blocks the room's other events. By the time the lookup
// returns, the room may well be gone (its last participant could have
// left while the request was in flight) — submitToExistingActor drops
// the update rather than resurrecting a retired room's actor.
func (d *Dispatcher) fetchQueueTitleAsync(room *domain.Room, itemID, videoID string) {
	go func() {
		title, err := d.oembed.FetchTitle(context.Background(), videoID)
		if err != nil || title == "" {
			return
		}
		d.submitToExistingActor(room.Code(), func() {
			if room.UpdateQueueTitle(itemID, title) {
				d.broadcastQueueUpdate(room)
			}
		})
	}()
}

func (d *Dispatcher) handleQueueRemove(room *domain.Room, connID string, data json.RawMessage) {
	var payload queueItemRefPayload
	_ = json.Unmarshal(data, &payload)
	if room.QueueRemove(payload.ItemID) {
		d.broadcastQueueUpdate(room)
	}
}

func (d *Dispatcher) handleQueueReorder(room *domain.Room, connID string, data json.RawMessage) {
	var payload queueReorderPayload
	_ = json.Unmarshal(data, &payload)
	if room.QueueReorder(payload.ItemID, payload.NewIndex) {
		d.broadcastQueueUpdate(room)
	}
}

func (d *Dispatcher) handleQueuePlay(room *domain.Room, connID string, data json.RawMessage) {
	var payload queueItemRefPayload
	_ = json.Unmarshal(data, &payload)
	item, ok := room.QueueTakeItem(payload.ItemID)
	if !ok {
		return
	}
	d.playQueueItem(room, item)
}

func (d *Dispatcher) handleQueuePlayNext(room *domain.Room, connID string) {
	item, ok := room.QueuePopFront()
	if !ok {
		return
	}
	d.playQueueItem(room, item)
}

func (d *Dispatcher) playQueueItem(room *domain.Room, item domain.QueueItem) {
	now := d.clock.NowMillis()
	room.MutateVideo(func(current domain.VideoState) domain.VideoState {
		next, err := video.Load(current, item.VideoURL, now)
		if err != nil {
			return current
		}
		return next
	})
	d.broadcastVideoState(room, outVideoLoad)
	d.broadcastQueueUpdate(room)
	d.systemChat(room, "Now playing: "+displayTitle(item))
}
