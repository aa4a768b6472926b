package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchsync/backend/internal/clock"
	"github.com/watchsync/backend/internal/idgen"
)

func newTestRegistry() *Registry {
	return New(clock.Fixed{Millis: 1000})
}

func TestCreateAndJoin(t *testing.T) {
	r := newTestRegistry()

	room, alice, err := r.Create(idgen.NewID(), "Alice")
	require.NoError(t, err)
	require.Len(t, room.Code(), 6)
	assert.Equal(t, alice.ConnectionID, room.HostID())

	room2, bob, err := r.Join(idgen.NewID(), room.Code(), "Bob")
	require.NoError(t, err)
	assert.Same(t, room, room2)

	assert.Equal(t, alice.ConnectionID, room.HostID())
	assert.Equal(t, 2, room.ParticipantCount())
	_ = bob
}

func TestJoinUnknownRoom(t *testing.T) {
	r := newTestRegistry()
	_, _, err := r.Join(idgen.NewID(), "ZZZZZZ", "Nobody")
	assert.Error(t, err)
}

func TestHostTransferOnLeave(t *testing.T) {
	r := newTestRegistry()
	room, alice, _ := r.Create(idgen.NewID(), "Alice")
	_, bob, _ := r.Join(idgen.NewID(), room.Code(), "Bob")
	_, carol, _ := r.Join(idgen.NewID(), room.Code(), "Carol")

	_, departed, newHost, empty, err := r.Leave(alice.ConnectionID)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, alice.ConnectionID, departed.ConnectionID)
	assert.Equal(t, bob.ConnectionID, newHost)
	assert.Equal(t, bob.ConnectionID, room.HostID())

	_ = carol
}

func TestLeaveLastParticipantReportsEmpty(t *testing.T) {
	r := newTestRegistry()
	room, alice, _ := r.Create(idgen.NewID(), "Alice")
	_, _, _, empty, err := r.Leave(alice.ConnectionID)
	require.NoError(t, err)
	assert.True(t, empty)

	r.DestroyRoom(room.Code())
	_, ok := r.LookupByCode(room.Code())
	assert.False(t, ok)
}

func TestLeaveThenJoinFreshParticipantID(t *testing.T) {
	r := newTestRegistry()
	room, alice, _ := r.Create(idgen.NewID(), "Alice")
	_, _, _, _, _ = r.Leave(alice.ConnectionID)

	_, alice2, err := r.Join(idgen.NewID(), room.Code(), "Alice")
	require.NoError(t, err)
	assert.NotEqual(t, alice.ConnectionID, alice2.ConnectionID)

	_, ok := r.Lookup(alice.ConnectionID)
	assert.False(t, ok)
}

func TestEnumerateVisibleExcludesHidden(t *testing.T) {
	r := newTestRegistry()
	room, _, _ := r.Create(idgen.NewID(), "Alice")
	visible := r.EnumerateVisible()
	assert.Len(t, visible, 1)

	room.SetHidden(true)
	assert.Empty(t, r.EnumerateVisible())
}
