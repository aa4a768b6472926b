package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/watchsync/backend/internal/comments"
	"github.com/watchsync/backend/internal/config"
	"github.com/watchsync/backend/internal/registry"
)

type healthResponse struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
	Users  int    `json:"users"`
	Uptime string `json:"uptime"`
}

func handleHealth(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, healthResponse{
			Status: "ok",
			Rooms:  reg.RoomCount(),
			Users:  reg.ParticipantCount(),
			Uptime: time.Since(startedAt).String(),
		})
	}
}

type iceServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

type iceServersResponse struct {
	ICEServers []iceServer `json:"iceServers"`
}

func handleICEServers(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		servers := []iceServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
			{URLs: []string{"stun:stun1.l.google.com:19302"}},
		}
		if cfg.TURNURL != "" {
			servers = append(servers, iceServer{
				URLs:       []string{cfg.TURNURL},
				Username:   cfg.TURNUsername,
				Credential: cfg.TURNCredential,
			})
		}
		c.JSON(http.StatusOK, iceServersResponse{ICEServers: servers})
	}
}

type roomListing struct {
	ID         string   `json:"id"`
	UserCount  int      `json:"userCount"`
	Users      []string `json:"users"`
	VideoTitle string   `json:"videoTitle"`
	VideoURL   string   `json:"videoUrl"`
}

type roomsResponse struct {
	Enabled bool          `json:"enabled"`
	Rooms   []roomListing `json:"rooms"`
}

func handleRooms(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries := reg.EnumerateVisible()
		out := make([]roomListing, 0, len(summaries))
		for _, s := range summaries {
			out = append(out, roomListing{
				ID:         s.Code,
				UserCount:  len(s.Participants),
				Users:      s.Participants,
				VideoTitle: s.VideoTitle,
				VideoURL:   s.VideoURL,
			})
		}
		c.JSON(http.StatusOK, roomsResponse{Enabled: true, Rooms: out})
	}
}

func handleComments(proxy *comments.Proxy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !proxy.Enabled() {
			c.JSON(http.StatusBadGateway, gin.H{"error": "comments proxy not configured"})
			return
		}
		videoID := c.Param("videoId")
		status, body, err := proxy.Fetch(c.Request.Context(), videoID, c.Request.URL.Query())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "upstream comments fetch failed"})
			return
		}
		c.Data(status, "application/json", body)
	}
}
