package websocket

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vegalabs/voicegate/internal/realtime"
	"github.com/vegalabs/voicegate/pkg/Logger"
)

// Handler terminates browser websocket connections and hands each one to a
// fresh relay instance.
type Handler struct {
	logger   *Logger.Logger
	bridge   *realtime.Bridge
	upgrader websocket.Upgrader
}

func NewHandler(logger *Logger.Logger, bridge *realtime.Bridge) *Handler {
	return &Handler{
		logger: logger,
		bridge: bridge,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict origins once the frontend host is fixed
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the realtime websocket endpoint.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	ws := router.Group("/ws")
	{
		ws.GET("/realtime", h.HandleRealtime)
	}
}

// HandleRealtime upgrades the request and runs the duplex relay for the
// lifetime of the connection. Each session gets exactly one relay.
func (h *Handler) HandleRealtime(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.New()
	h.logger.Infof("realtime session %s connected from %s", sessionID, c.ClientIP())

	relay := h.bridge.NewRelay(sessionID.String())
	if err := relay.Run(c.Request.Context(), conn); err != nil {
		if errors.Is(err, realtime.ErrUpstreamConnect) {
			h.logger.Errorf("session %s aborted: %v", sessionID, err)
			return
		}
		h.logger.Errorf("session %s ended with error: %v", sessionID, err)
		return
	}

	h.logger.Infof("realtime session %s ended", sessionID)
}
