package domain

// VideoType classifies the loaded video's source.
type VideoType string

const (
	VideoTypeNone    VideoType = "none"
	VideoTypeYouTube VideoType = "youtube"
	VideoTypeDirect  VideoType = "direct"
)

// VideoState is the canonical playback tuple for a room (spec §3).
// It is mutated only by the dispatcher through internal/video's transition
// functions; everything else only reads snapshots of it.
type VideoState struct {
	VideoID        string
	VideoURL       string
	VideoType      VideoType
	IsPlaying      bool
	AnchorPosition float64 // seconds
	AnchorWallTime int64   // ms, wall-clock at which AnchorPosition was true
	Rate           float64
	Seq            uint64
}

// NewVideoState returns the empty video state a room starts with.
func NewVideoState() VideoState {
	return VideoState{
		VideoType: VideoTypeNone,
		Rate:      1.0,
	}
}

// VideoSnapshot is the wire-facing view of VideoState: it carries the
// *computed* effective position at Timestamp, never the raw anchor, so
// clients never do cross-clock arithmetic (spec §4.2.2).
type VideoSnapshot struct {
	VideoID     string    `json:"videoId"`
	VideoURL    string    `json:"videoUrl"`
	VideoType   VideoType `json:"videoType"`
	IsPlaying   bool      `json:"isPlaying"`
	CurrentTime float64   `json:"currentTime"`
	Rate        float64   `json:"rate"`
	Seq         uint64    `json:"seq"`
	Timestamp   int64     `json:"timestamp"`
}

// EffectivePosition computes the canonical playback position at wall-clock
// t (ms), per spec §3: isPlaying ? anchor + (t-anchorWallTime)/1000*rate : anchor.
func (v VideoState) EffectivePosition(nowMillis int64) float64 {
	if !v.IsPlaying {
		return v.AnchorPosition
	}
	elapsedSeconds := float64(nowMillis-v.AnchorWallTime) / 1000.0
	return v.AnchorPosition + elapsedSeconds*v.Rate
}

// Snapshot stamps the current effective position at nowMillis.
func (v VideoState) Snapshot(nowMillis int64) VideoSnapshot {
	return VideoSnapshot{
		VideoID:     v.VideoID,
		VideoURL:    v.VideoURL,
		VideoType:   v.VideoType,
		IsPlaying:   v.IsPlaying,
		CurrentTime: v.EffectivePosition(nowMillis),
		Rate:        v.Rate,
		Seq:         v.Seq,
		Timestamp:   nowMillis,
	}
}
