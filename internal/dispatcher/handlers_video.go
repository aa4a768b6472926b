package dispatcher

import (
	"encoding/json"

	"github.com/watchsync/backend/internal/domain"
	"github.com/watchsync/backend/internal/video"
)

func (d *Dispatcher) handleVideoLoad(room *domain.Room, connID string, data json.RawMessage) {
	var payload videoLoadPayload
	_ = json.Unmarshal(data, &payload)

	now := d.clock.NowMillis()
	var loadErr error
	room.MutateVideo(func(current domain.VideoState) domain.VideoState {
		next, err := video.Load(current, payload.URL, now)
		if err != nil {
			loadErr = err
			return current
		}
		return next
	})
	if loadErr != nil {
		d.unicastError(connID, "could not load that url")
		return
	}

	d.broadcastVideoState(room, outVideoLoad)
	d.systemChat(room, "A new video was loaded.")
}

func (d *Dispatcher) handleVideoPlay(room *domain.Room, connID string) {
	now := d.clock.NowMillis()
	applied := false
	room.MutateVideo(func(current domain.VideoState) domain.VideoState {
		next, ok := video.Play(current, now)
		applied = ok
		return next
	})
	if applied {
		d.broadcastVideoState(room, outVideoStateUpdate)
	}
}

func (d *Dispatcher) handleVideoPause(room *domain.Room, connID string, data json.RawMessage) {
	var payload videoPausePayload
	_ = json.Unmarshal(data, &payload)

	now := d.clock.NowMillis()
	applied := false
	room.MutateVideo(func(current domain.VideoState) domain.VideoState {
		next, ok := video.Pause(current, payload.CurrentTime, now)
		applied = ok
		return next
	})
	if applied {
		d.broadcastVideoState(room, outVideoStateUpdate)
	}
}

func (d *Dispatcher) handleVideoSeek(room *domain.Room, connID string, data json.RawMessage) {
	var payload videoSeekPayload
	_ = json.Unmarshal(data, &payload)

	now := d.clock.NowMillis()
	room.MutateVideo(func(current domain.VideoState) domain.VideoState {
		return video.Seek(current, payload.CurrentTime, now)
	})
	d.broadcastVideoState(room, outVideoStateUpdate)
}

func (d *Dispatcher) handleVideoRate(room *domain.Room, connID string, data json.RawMessage) {
	var payload videoRatePayload
	_ = json.Unmarshal(data, &payload)
	if payload.Rate <= 0 {
		d.unicastError(connID, "invalid playback rate")
		return
	}

	now := d.clock.NowMillis()
	room.MutateVideo(func(current domain.VideoState) domain.VideoState {
		return video.Rate(current, payload.Rate, now)
	})
	d.broadcastVideoState(room, outVideoStateUpdate)
}

// handleVideoEnded is spec §4.2 "ended()": the ended-lock debounce is kept
// per room (keyed by room code) so every actor invocation (they're already serialized, but
// the guard's timed release is independent of the actor) shares one
// instance across the multiple video:ended events clients fan in.
func (d *Dispatcher) handleVideoEnded(room *domain.Room, connID string) {
	if !d.endedGuardFor(room.Code()).Try() {
		return
	}
	item, ok := room.QueuePopFront()
	if !ok {
		return
	}

	now := d.clock.NowMillis()
	rawURL := item.VideoURL
	room.MutateVideo(func(current domain.VideoState) domain.VideoState {
		next, err := video.Load(current, rawURL, now)
		if err != nil {
			return current
		}
		return next
	})

	d.broadcastVideoState(room, outVideoLoad)
	d.broadcastQueueUpdate(room)
	d.systemChat(room, "Now playing: "+displayTitle(item))
}

func displayTitle(item domain.QueueItem) string {
	if item.Title != "" {
		return item.Title
	}
	if item.VideoID != "" {
		return item.VideoID
	}
	return item.VideoURL
}
