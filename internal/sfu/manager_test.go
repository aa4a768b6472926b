package sfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchsync/backend/internal/domain"
)

func newTestManager() *Manager {
	return NewManager(NewWorkerPool(2, "127.0.0.1", 40000))
}

func produce(t *testing.T, m *Manager, room, connID string) string {
	t.Helper()
	_, err := m.CreateSendTransport(room, connID)
	require.NoError(t, err)
	params, err := m.Produce(room, connID)
	require.NoError(t, err)
	return params.ProducerID
}

func TestVoiceLateJoinSeesExistingProducers(t *testing.T) {
	m := newTestManager()
	const room = "ROOM01"

	m.Join(room, "alice")
	m.Join(room, "bob")
	aliceProducer := produce(t, m, room, "alice")
	bobProducer := produce(t, m, room, "bob")

	_, existing := m.Join(room, "carol")
	assert.Len(t, existing, 2)

	ids := map[string]string{}
	for _, ref := range existing {
		ids[ref.ConnectionID] = ref.ProducerID
	}
	assert.Equal(t, aliceProducer, ids["alice"])
	assert.Equal(t, bobProducer, ids["bob"])
}

func TestConsumeRequiresRecvTransport(t *testing.T) {
	m := newTestManager()
	const room = "ROOM02"
	m.Join(room, "alice")
	m.Join(room, "bob")
	producerID := produce(t, m, room, "alice")

	_, err := m.Consume(room, "bob", "alice", producerID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = m.CreateRecvTransport(room, "bob")
	require.NoError(t, err)
	consumer, err := m.Consume(room, "bob", "alice", producerID)
	require.NoError(t, err)
	assert.Equal(t, producerID, consumer.ProducerID)
}

func TestLeavePropagatesProducerCloseToConsumers(t *testing.T) {
	m := newTestManager()
	const room = "ROOM03"
	m.Join(room, "alice")
	m.Join(room, "bob")
	producerID := produce(t, m, room, "alice")
	_, _ = m.CreateRecvTransport(room, "bob")
	consumer, err := m.Consume(room, "bob", "alice", producerID)
	require.NoError(t, err)

	result := m.Leave(room, "alice")
	assert.True(t, result.ProducerClosed)
	assert.Equal(t, producerID, result.ProducerID)
	require.Len(t, result.ConsumerOwners, 1)
	assert.Equal(t, "bob", result.ConsumerOwners[0].ConnID)
	assert.Equal(t, consumer.ConsumerID, result.ConsumerOwners[0].ConsumerID)
}

func TestRouterDestroyedWhenPeerSetEmpties(t *testing.T) {
	m := newTestManager()
	const room = "ROOM04"
	m.Join(room, "alice")
	_, ok := m.router(room)
	assert.True(t, ok)

	m.Leave(room, "alice")
	_, ok = m.router(room)
	assert.False(t, ok)
}
