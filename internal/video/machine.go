package video

import (
	"sync/atomic"
	"time"

	"github.com/watchsync/backend/internal/domain"
)

// EndedLockHold is how long the ended-lock (§4.2, §9) stays engaged after
// the first video:ended event, absorbing the duplicate events multiple
// clients naturally fire at end-of-video.
const EndedLockHold = 2000 * time.Millisecond

// Load applies spec §4.2 "load": classify the URL, reset the anchor to
// position 0 playing from now, and bump seq. Returns domain.ErrInvalidInput
// if the URL doesn't classify.
func Load(current domain.VideoState, rawURL string, nowMillis int64) (domain.VideoState, error) {
	c, err := Classify(rawURL)
	if err != nil {
		return current, err
	}
	next := current
	next.VideoID = c.VideoID
	next.VideoURL = c.VideoURL
	next.VideoType = c.Type
	next.IsPlaying = true
	next.AnchorPosition = 0
	next.AnchorWallTime = nowMillis
	next.Rate = 1.0
	next.Seq++
	return next, nil
}

// Play applies spec §4.2.1 echo suppression: a play transition when the
// room is already playing produces no state change at all (the dispatcher
// must not broadcast and must not bump seq). ok is false when suppressed.
func Play(current domain.VideoState, nowMillis int64) (next domain.VideoState, ok bool) {
	if current.IsPlaying {
		return current, false
	}
	next = current
	next.IsPlaying = true
	next.AnchorWallTime = nowMillis
	next.Seq++
	return next, true
}

// Pause mirrors Play: a pause while already paused is suppressed.
func Pause(current domain.VideoState, clientPosition float64, nowMillis int64) (next domain.VideoState, ok bool) {
	if !current.IsPlaying {
		return current, false
	}
	next = current
	next.IsPlaying = false
	next.AnchorPosition = clientPosition
	next.AnchorWallTime = nowMillis
	next.Seq++
	return next, true
}

// Seek is always applied — it carries new information regardless of the
// current playing state (spec §4.2.1).
func Seek(current domain.VideoState, clientPosition float64, nowMillis int64) domain.VideoState {
	next := current
	next.AnchorPosition = clientPosition
	next.AnchorWallTime = nowMillis
	next.Seq++
	return next
}

// Rate recomputes the anchor at the *current* effective position before
// changing the rate, so the instantaneous position is continuous across
// the transition (spec §4.2, scenario 3).
func Rate(current domain.VideoState, newRate float64, nowMillis int64) domain.VideoState {
	next := current
	next.AnchorPosition = current.EffectivePosition(nowMillis)
	next.AnchorWallTime = nowMillis
	next.Rate = newRate
	next.Seq++
	return next
}

// EndedGuard is the per-room ended-lock: a short-lived, timed-release flag
// that debounces the fan-in of duplicate video:ended events multiple
// clients fire at end-of-video. It is a debounce, not a critical section
// (spec §9) — a blocked Try() call means "drop this event", not "wait."
type EndedGuard struct {
	engaged atomic.Bool
}

// Try engages the guard if it is not already engaged, scheduling automatic
// release after EndedLockHold. Returns true if the caller may proceed.
func (g *EndedGuard) Try() bool {
	if !g.engaged.CompareAndSwap(false, true) {
		return false
	}
	time.AfterFunc(EndedLockHold, func() { g.engaged.Store(false) })
	return true
}
