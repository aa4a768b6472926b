// Package comments transparently proxies YouTube comment requests to a
// rotating set of Invidious instances (spec §6 "GET /comments/:videoId"),
// caching responses for five minutes. Each uncached request goes to the
// next configured instance in round-robin order; a failed fetch is not
// retried on another instance. Out of scope per spec §1: the instances themselves,
// their comment-ranking behavior, and anything beyond best-effort relay.
package comments

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var errNoInstances = errors.New("comments: no upstream instances configured")

const (
	fetchTimeout = 5 * time.Second
	cacheTTL     = 5 * time.Minute
)

type cacheEntry struct {
	body      []byte
	status    int
	fetchedAt time.Time
}

// Proxy rotates across a fixed list of upstream instances and caches the
// last response per (videoID, query) key.
type Proxy struct {
	instances []string
	http      *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
	next  int
}

// New builds a Proxy over instances (already trimmed, non-empty hosts).
func New(instances []string) *Proxy {
	return &Proxy{
		instances: instances,
		http:      &http.Client{Timeout: fetchTimeout},
		cache:     make(map[string]cacheEntry),
	}
}

// Enabled reports whether any upstream instance is configured.
func (p *Proxy) Enabled() bool { return len(p.instances) > 0 }

// Fetch proxies GET /api/v1/comments/:videoID?query to the next instance
// in rotation, serving a cached body when fresh. Returns the upstream (or
// cached) status code and body; callers should relay both verbatim.
func (p *Proxy) Fetch(ctx context.Context, videoID string, query url.Values) (status int, body []byte, err error) {
	key := videoID + "?" + query.Encode()

	p.mu.Lock()
	if entry, ok := p.cache[key]; ok && time.Since(entry.fetchedAt) < cacheTTL {
		p.mu.Unlock()
		return entry.status, entry.body, nil
	}
	p.mu.Unlock()

	if !p.Enabled() {
		return http.StatusBadGateway, nil, errNoInstances
	}

	instance := p.pickInstance()
	upstream := instance + "/api/v1/comments/" + url.PathEscape(videoID)
	if encoded := query.Encode(); encoded != "" {
		upstream += "?" + encoded
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstream, nil)
	if err != nil {
		return http.StatusBadGateway, nil, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		log.Warn().Str("module", "comments").Str("instance", instance).Err(err).Msg("upstream fetch failed")
		return http.StatusBadGateway, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return http.StatusBadGateway, nil, err
	}

	p.mu.Lock()
	p.cache[key] = cacheEntry{body: respBody, status: resp.StatusCode, fetchedAt: time.Now()}
	p.mu.Unlock()

	return resp.StatusCode, respBody, nil
}

func (p *Proxy) pickInstance() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	instance := p.instances[p.next%len(p.instances)]
	p.next++
	return instance
}
