package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomActorSubmitAfterRetireIsNoop(t *testing.T) {
	a := newRoomActor()
	a.retire()

	ran := false
	assert.NotPanics(t, func() {
		a.submit(func() { ran = true })
	})
	assert.False(t, ran)
}

func TestRoomActorRetireIsIdempotent(t *testing.T) {
	a := newRoomActor()
	assert.NotPanics(t, func() {
		a.retire()
		a.retire()
	})
}

func TestSubmitToExistingActorDoesNotResurrect(t *testing.T) {
	d := New(nil, nil, nil, nil, nil, nil)

	delivered := d.submitToExistingActor("DEAD01", func() {})
	assert.False(t, delivered)

	d.mu.Lock()
	_, exists := d.actors["DEAD01"]
	d.mu.Unlock()
	assert.False(t, exists, "submitToExistingActor must never create a new actor")
}

func TestSubmitToExistingActorDeliversToLiveActor(t *testing.T) {
	d := New(nil, nil, nil, nil, nil, nil)
	d.actorFor("ROOM01")

	done := make(chan struct{})
	delivered := d.submitToExistingActor("ROOM01", func() { close(done) })
	assert.True(t, delivered)
	<-done
}

func TestSubmitToExistingActorAfterRetireIsDropped(t *testing.T) {
	d := New(nil, nil, nil, nil, nil, nil)
	d.actorFor("ROOM01")
	d.retireActor("ROOM01")

	delivered := d.submitToExistingActor("ROOM01", func() {})
	assert.False(t, delivered)
}
