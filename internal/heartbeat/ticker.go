// Package heartbeat runs the process-wide advisory snapshot ticker
// (spec §4.2.3): every 3 seconds, every room with at least two
// participants, a loaded video, and isPlaying == true gets its current
// playback snapshot rebroadcast. Heartbeats never bump seq — they exist
// only to correct clients that missed a live event.
package heartbeat

import (
	"time"

	"github.com/watchsync/backend/internal/clock"
	"github.com/watchsync/backend/internal/domain"
	"github.com/watchsync/backend/internal/registry"
)

const period = 3 * time.Second

// Broadcaster is the narrow slice of the hub the ticker needs.
type Broadcaster interface {
	BroadcastRoom(roomCode, excludeConnID, event string, payload any)
}

// Ticker drives the heartbeat loop. Start it once at process startup;
// Stop to tear it down cleanly on shutdown.
type Ticker struct {
	registry *registry.Registry
	hub      Broadcaster
	clock    clock.Clock

	stop chan struct{}
}

func New(reg *registry.Registry, hub Broadcaster, c clock.Clock) *Ticker {
	return &Ticker{registry: reg, hub: hub, clock: c, stop: make(chan struct{})}
}

// Run blocks, ticking every `period` until Stop is called. Call it in its
// own goroutine.
func (t *Ticker) Run() {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.tick()
		case <-t.stop:
			return
		}
	}
}

func (t *Ticker) Stop() { close(t.stop) }

func (t *Ticker) tick() {
	now := t.clock.NowMillis()
	for _, room := range t.registry.AllRooms() {
		if room.ParticipantCount() < 2 {
			continue
		}
		video := room.Video()
		if video.VideoType == domain.VideoTypeNone || !video.IsPlaying {
			continue
		}
		t.hub.BroadcastRoom(room.Code(), "", "video:heartbeat", video.Snapshot(now))
	}
}
