// Package video implements the shared playback state machine (spec §4.2):
// anchor-based position computation, echo-suppressed play/pause, always-
// applied seek/rate, and the ended-lock debounce for queue auto-advance.
package video

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/watchsync/backend/internal/domain"
)

var (
	youtubeIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

	directExtensions = map[string]bool{
		"mp4":  true,
		"webm": true,
		"mov":  true,
		"mkv":  true,
		"m3u8": true,
		"ogg":  true,
	}
)

// Classified is the result of classifying a user-supplied URL.
type Classified struct {
	VideoID  string
	VideoURL string
	Type     domain.VideoType
}

// Classify validates and classifies a URL per spec §4.2 "load": YouTube
// (11-char ID extracted from common URL shapes) or direct (file extension
// in a known set, tolerating an m3u8 query-string suffix). Returns
// domain.ErrInvalidInput when neither shape matches.
func Classify(raw string) (Classified, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Classified{}, domain.ErrInvalidInput
	}
	if id, ok := extractYouTubeID(trimmed); ok {
		return Classified{VideoID: id, VideoURL: trimmed, Type: domain.VideoTypeYouTube}, nil
	}
	if isDirectURL(trimmed) {
		return Classified{VideoURL: trimmed, Type: domain.VideoTypeDirect}, nil
	}
	return Classified{}, domain.ErrInvalidInput
}

// extractYouTubeID recognizes the common youtube.com/watch?v=, youtu.be/,
// youtube.com/embed/, and youtube.com/shorts/ URL shapes.
func extractYouTubeID(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	switch {
	case host == "youtu.be":
		id := strings.TrimPrefix(u.Path, "/")
		return validateID(id)
	case host == "youtube.com" || host == "music.youtube.com":
		if strings.HasPrefix(u.Path, "/watch") {
			return validateID(u.Query().Get("v"))
		}
		if strings.HasPrefix(u.Path, "/embed/") {
			return validateID(strings.TrimPrefix(u.Path, "/embed/"))
		}
		if strings.HasPrefix(u.Path, "/shorts/") {
			return validateID(strings.TrimPrefix(u.Path, "/shorts/"))
		}
	}
	return "", false
}

func validateID(id string) (string, bool) {
	// Some URLs append extra path segments or query strings after the ID.
	if i := strings.IndexAny(id, "?&/"); i >= 0 {
		id = id[:i]
	}
	if youtubeIDRe.MatchString(id) {
		return id, true
	}
	return "", false
}

// URLTail returns the last path segment of a URL (its filename, roughly),
// for use as a display title placeholder when nothing better — an oEmbed
// lookup, a playlist entry name — is available. Direct media URLs have no
// other source of a title, unlike YouTube items, where VideoID fills the
// same role until the async oEmbed lookup replaces it.
func URLTail(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	path := strings.TrimRight(u.Path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		return raw
	}
	return path
}

// isDirectURL recognizes a direct media URL by its file extension, with an
// m3u8-playlist query-string suffix tolerated (e.g. "...master.m3u8?token=...").
func isDirectURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	path := u.Path
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return false
	}
	ext := strings.ToLower(path[i+1:])
	return directExtensions[ext]
}
