package server

import (
	"github.com/gin-gonic/gin"

	wshandler "github.com/vegalabs/voicegate/internal/handlers/websocket"
	"github.com/vegalabs/voicegate/internal/realtime"
	"github.com/vegalabs/voicegate/pkg/Logger"
)

type Dependencies struct {
	Logger *Logger.Logger
	Bridge *realtime.Bridge
}

func NewServerDependencies(logger *Logger.Logger, bridge *realtime.Bridge) Dependencies {
	return Dependencies{
		Logger: logger,
		Bridge: bridge,
	}
}

func InitializeRoutes(r *gin.Engine, dep Dependencies) {
	r.GET("/", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"message": "Server healthy"}) })
	r.GET("/health", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"status": "ok"}) })

	ws := wshandler.NewHandler(dep.Logger, dep.Bridge)
	ws.RegisterRoutes(r)
}
