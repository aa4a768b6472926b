// Package screenshare implements the single-sharer mesh coordinator
// (spec §4.5). Unlike voice, screen-share stays peer-to-peer: the server
// only enforces the single-sharer invariant and relays offer/answer/ICE
// between the sharer and each viewer, never inspecting the SDP payload.
// This is the teacher's original offer/answer/candidate signaling path
// (internal/adapters/signal's HandleSignal dispatch for those three event
// types) kept alive rather than deleted, per spec §9's resolution of the
// SFU-vs-peer-to-peer open question: the SFU path displaces peer-to-peer
// for voice, but screen-share keeps it by design.
package screenshare

import "github.com/watchsync/backend/internal/domain"

// Coordinator enforces the single-sharer invariant. It holds no
// connection or room state itself — domain.Room already tracks
// screenSharerId — so it's a thin set of pure operations the dispatcher
// calls under the room's actor lock.
type Coordinator struct{}

func New() *Coordinator { return &Coordinator{} }

// Start attempts to make connID the room's sharer. Returns
// domain.ErrConflict if someone else is already sharing.
func (c *Coordinator) Start(room *domain.Room, connID string) error {
	if !room.SetScreenSharer(connID) {
		return domain.ErrConflict
	}
	return nil
}

// Stop clears connID as sharer. Returns false if connID wasn't the
// active sharer (no-op from the caller's perspective).
func (c *Coordinator) Stop(room *domain.Room, connID string) bool {
	return room.ClearScreenSharer(connID)
}
