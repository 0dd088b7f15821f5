package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vegalabs/voicegate/internal/app/toolsetup"
	"github.com/vegalabs/voicegate/internal/config"
	"github.com/vegalabs/voicegate/internal/constants/prompts"
	"github.com/vegalabs/voicegate/internal/realtime"
	"github.com/vegalabs/voicegate/internal/server"
	"github.com/vegalabs/voicegate/internal/tools"
	"github.com/vegalabs/voicegate/pkg/Logger"
	toolsystem "github.com/vegalabs/voicegate/pkg/tool_system"
)

// This is the main entry point for the bridge server.
// Loads in all system components
// Exposes the realtime websocket endpoint
func main() {
	// fetch cfg
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// load global logger
	logger := Logger.New(cfg.Server.Debug)
	logger.Info("Logger initialized")

	// build the tool registry once; sessions share it read-only
	registry := toolsystem.NewMemoryRegistry()
	if err := toolsetup.RegisterCatalog(registry, &tools.ToolDependencies{
		Logger:     logger,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Search:     cfg.Tools,
	}); err != nil {
		log.Fatalf("Failed to register tools: %v", err)
	}
	logger.Infof("Tool registry ready with %d tools", registry.Len())

	// fall back to the stock assistant prompt when none is configured
	if cfg.Session.SystemPrompt == "" {
		cfg.Session.SystemPrompt = prompts.DEFAULT_PROMPT.GetCurrentPrompt().Content
	}

	// one bridge configuration, one relay per connection
	bridge, err := realtime.NewBridge(cfg, registry, logger)
	if err != nil {
		log.Fatalf("Failed to build bridge: %v", err)
	}

	// compose router
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	dep := server.NewServerDependencies(logger, bridge)
	server.InitializeRoutes(router, dep)

	// listen with graceful exit
	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router.Handler(),
	}
	go func() {
		logger.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server exiting %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// 5 secs then cancel
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown err %v", err)
	}
	logger.Info("Shutdown system")
}
