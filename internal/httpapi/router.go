// Package httpapi is the HTTP surface (spec §6): health, ICE server
// config, the public lobby listing, the comments proxy, and the
// WebSocket upgrade endpoint. Router setup and the client-token cookie
// middleware are grounded on the teacher's adapters/http.SetupRouter and
// ClientTokenMiddleware, generalized from one hard-wired orchestrator
// dependency to the hub + registry + comments proxy this spec needs.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/watchsync/backend/internal/comments"
	"github.com/watchsync/backend/internal/config"
	"github.com/watchsync/backend/internal/hub"
	"github.com/watchsync/backend/internal/registry"
)

var startedAt = time.Now()

func genClientToken() string { return uuid.NewString() }

// ClientTokenMiddleware assigns a stable per-browser identity cookie.
// It is not authentication (spec §1: "rooms are public-by-code"), and it
// is not the hub connection ID: the WebSocket upgrade endpoint mints a
// fresh ID for every socket.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// Deps bundles everything the router needs to hand requests off to.
type Deps struct {
	Config   *config.Config
	Registry *registry.Registry
	Hub      *hub.Hub
	Comments *comments.Proxy
}

func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.CORSOrigin))

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("watchsync", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/health", handleHealth(deps.Registry))
	r.GET("/ice-servers", handleICEServers(cfg))
	r.GET("/rooms", handleRooms(deps.Registry))
	r.GET("/comments/:videoId", handleComments(deps.Comments))
	r.GET("/ws", handleWebSocket(deps.Hub))

	log.Info().Str("module", "httpapi").Msg("router setup")
	return r
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
