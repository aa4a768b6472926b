package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/watchsync/backend/internal/hub"
	"github.com/watchsync/backend/internal/idgen"
)

// handleWebSocket upgrades to the long-lived connection the wire
// protocol (spec §6) runs over. Each socket gets a fresh connection ID —
// the client-token cookie identifies a browser across reconnects, but a
// room participant's identity (spec §4.6: "stable for the connection's
// lifetime") is scoped to one live socket, matching the teacher's own
// /ws/join flow where the transport-level ID is minted per connection.
func handleWebSocket(h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		connID := idgen.NewID()
		if err := h.Upgrade(c.Writer, c.Request, connID); err != nil {
			log.Debug().Str("module", "httpapi").Err(err).Msg("websocket upgrade failed")
		}
	}
}
