package screenshare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchsync/backend/internal/domain"
)

func TestStartEnforcesSingleSharer(t *testing.T) {
	room := domain.NewRoom("ROOM01", 0)
	c := New()

	require.NoError(t, c.Start(room, "alice"))
	err := c.Start(room, "bob")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "alice", room.ScreenSharerID())
}

func TestStopClearsSharer(t *testing.T) {
	room := domain.NewRoom("ROOM01", 0)
	c := New()

	require.NoError(t, c.Start(room, "alice"))
	assert.True(t, c.Stop(room, "alice"))
	assert.Equal(t, "", room.ScreenSharerID())

	require.NoError(t, c.Start(room, "bob"))
}

func TestStopIsNoopForNonSharer(t *testing.T) {
	room := domain.NewRoom("ROOM01", 0)
	c := New()

	require.NoError(t, c.Start(room, "alice"))
	assert.False(t, c.Stop(room, "bob"))
	assert.Equal(t, "alice", room.ScreenSharerID())
}
