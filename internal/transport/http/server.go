package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/velichkin/parley-server/internal/auth"
	"github.com/velichkin/parley-server/internal/config"
	"github.com/velichkin/parley-server/internal/core"
	"github.com/velichkin/parley-server/internal/files"
	"github.com/velichkin/parley-server/internal/store"
)

// NewServer builds the HTTP server: REST auth endpoints, history and upload
// APIs behind JWT middleware, static uploads, and the WebSocket bridge.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, fileStore *files.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	api := NewAPIHandlers(authService, st, fileStore, cfg.HistoryLimit, logger)

	router.GET("/health", healthHandler)
	router.POST("/api/register", api.Register)
	router.POST("/api/login", api.Login)

	authorized := router.Group("/api", AuthMiddleware(authService, logger))
	authorized.GET("/messages/:room", api.RoomMessages)
	authorized.POST("/upload", api.Upload)

	if fileStore != nil {
		router.Static("/uploads", fileStore.Dir())
	}

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
