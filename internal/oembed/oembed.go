// Package oembed does the best-effort YouTube title lookup for queue
// items (spec §4.3: "for YouTube items, the title is filled in
// asynchronously from an external oEmbed lookup"). Failure is not an
// error condition the caller needs to handle — the title just stays
// whatever placeholder the queue item was given at add-time.
package oembed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const lookupTimeout = 5 * time.Second

const endpoint = "https://www.youtube.com/oembed?url=%s&format=json"

type response struct {
	Title string `json:"title"`
}

// Client performs oEmbed title lookups. It holds no state beyond the
// http.Client so it's safe to share across rooms.
type Client struct {
	http *http.Client
}

func New() *Client {
	return &Client{http: &http.Client{Timeout: lookupTimeout}}
}

// FetchTitle looks up the display title for a YouTube video ID. On any
// failure (timeout, non-200, malformed body) it returns ("", err) and the
// caller is expected to leave the queue item's title untouched — this is
// the spec's TransientExternal error class (§7), never surfaced to users.
func (c *Client) FetchTitle(ctx context.Context, videoID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	watchURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(endpoint, watchURL), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Str("module", "oembed").Str("video_id", videoID).Err(err).Msg("title lookup failed")
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oembed: status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Title, nil
}
