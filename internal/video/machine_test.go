package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchsync/backend/internal/domain"
)

func TestClassifyYouTube(t *testing.T) {
	cases := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://youtube.com/embed/dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ&list=xyz",
	}
	for _, raw := range cases {
		c, err := Classify(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, domain.VideoTypeYouTube, c.Type)
		assert.Equal(t, "dQw4w9WgXcQ", c.VideoID)
	}
}

func TestClassifyDirect(t *testing.T) {
	cases := []string{
		"https://cdn.example.com/movie.mp4",
		"https://cdn.example.com/stream/master.m3u8?token=abc",
	}
	for _, raw := range cases {
		c, err := Classify(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, domain.VideoTypeDirect, c.Type)
	}
}

func TestClassifyInvalid(t *testing.T) {
	_, err := Classify("not a url at all")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlayEchoSuppressed(t *testing.T) {
	state := domain.VideoState{IsPlaying: true, AnchorPosition: 30, AnchorWallTime: 1000, Seq: 5}
	next, ok := Play(state, 2000)
	assert.False(t, ok)
	assert.Equal(t, state, next)
	assert.Equal(t, uint64(5), next.Seq)
}

func TestPauseEchoSuppressed(t *testing.T) {
	state := domain.VideoState{IsPlaying: false, AnchorPosition: 30, Seq: 5}
	next, ok := Pause(state, 45, 2000)
	assert.False(t, ok)
	assert.Equal(t, state, next)
}

func TestPauseApplied(t *testing.T) {
	state := domain.VideoState{IsPlaying: true, AnchorPosition: 0, AnchorWallTime: 0, Seq: 5}
	next, ok := Pause(state, 12.5, 3000)
	require.True(t, ok)
	assert.False(t, next.IsPlaying)
	assert.Equal(t, 12.5, next.AnchorPosition)
	assert.Equal(t, int64(3000), next.AnchorWallTime)
	assert.Equal(t, uint64(6), next.Seq)
}

func TestSeekAlwaysApplied(t *testing.T) {
	state := domain.VideoState{IsPlaying: false, AnchorPosition: 0, Seq: 1}
	next := Seek(state, 99, 500)
	assert.Equal(t, 99.0, next.AnchorPosition)
	assert.Equal(t, uint64(2), next.Seq)

	playing := domain.VideoState{IsPlaying: true, AnchorPosition: 0, Seq: 1}
	next2 := Seek(playing, 5, 500)
	assert.Equal(t, 5.0, next2.AnchorPosition)
	assert.Equal(t, uint64(2), next2.Seq)
}

func TestRateContinuity(t *testing.T) {
	// Scenario 3 from spec §8.
	state := domain.VideoState{IsPlaying: true, AnchorPosition: 0, AnchorWallTime: 1000, Rate: 1.0, Seq: 7}
	now := int64(1000 + 10000)
	next := Rate(state, 2.0, now)

	assert.Equal(t, 10.0, next.AnchorPosition)
	assert.Equal(t, now, next.AnchorWallTime)
	assert.Equal(t, 2.0, next.Rate)
	assert.Equal(t, uint64(8), next.Seq)

	before := state.EffectivePosition(now)
	after := next.EffectivePosition(now)
	assert.InDelta(t, before, after, 0.0001)
}

func TestEffectivePosition(t *testing.T) {
	playing := domain.VideoState{IsPlaying: true, AnchorPosition: 10, AnchorWallTime: 0, Rate: 2.0}
	assert.Equal(t, 20.0, playing.EffectivePosition(5000))

	paused := domain.VideoState{IsPlaying: false, AnchorPosition: 42}
	assert.Equal(t, 42.0, paused.EffectivePosition(999999))
}

func TestEndedGuardDebounce(t *testing.T) {
	var g EndedGuard
	assert.True(t, g.Try())
	assert.False(t, g.Try())
	assert.False(t, g.Try())
}
