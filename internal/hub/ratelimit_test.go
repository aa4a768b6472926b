package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)

	assert.True(t, rl.allow("conn1"))
	assert.True(t, rl.allow("conn1"))
	assert.True(t, rl.allow("conn1"))
	assert.False(t, rl.allow("conn1"))
}

func TestRateLimiterIsPerConnection(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)

	assert.True(t, rl.allow("conn1"))
	assert.True(t, rl.allow("conn2"))
	assert.False(t, rl.allow("conn1"))
}

func TestRateLimiterForgetResetsHistory(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)

	assert.True(t, rl.allow("conn1"))
	assert.False(t, rl.allow("conn1"))

	rl.forget("conn1")
	assert.True(t, rl.allow("conn1"))
}

func TestRateLimiterWindowExpires(t *testing.T) {
	rl := newRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.allow("conn1"))
	assert.False(t, rl.allow("conn1"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.allow("conn1"))
}
