// Package server exposes the chat engine over HTTP with gin.
package server

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"bate-papo/contract"
	"bate-papo/infrastructure/http/ratelimit"
	"bate-papo/observability"

	"github.com/benbjohnson/clock"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Log      *slog.Logger
	Clock    clock.Clock
	Registry contract.IRegistry
	Bus      contract.IBus
	// Metrics and Limiter may be nil.
	Metrics *observability.Metrics
	Limiter *ratelimit.MapLimiter
	// AllowedOrigins lists the CORS origins, "*" allows any.
	AllowedOrigins []string
}

// NewRouter mounts every chat endpoint plus /health and /metrics.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(cfg.Log), requestMetrics(cfg.Metrics), corsMiddleware(cfg.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	api := r.Group("/")
	api.Use(ratelimit.Middleware(cfg.Limiter, cfg.Clock, UserHeader))

	// POST /participants -> join the room
	api.POST("/participants", NewJoinController(cfg.Log, cfg.Registry).Handle())
	// GET /participants -> live participants
	api.GET("/participants", NewListParticipantsController(cfg.Log, cfg.Registry).Handle())
	// POST /status -> keep-alive of the user header
	api.POST("/status", NewHeartbeatController(cfg.Log, cfg.Registry).Handle())

	api.POST("/messages", NewPostMessageController(cfg.Log, cfg.Bus).Handle())
	api.GET("/messages", NewListMessagesController(cfg.Log, cfg.Bus).Handle())
	api.PUT("/messages/:id", NewEditMessageController(cfg.Log, cfg.Bus).Handle())
	api.DELETE("/messages/:id", NewDeleteMessageController(cfg.Log, cfg.Bus).Handle())

	return r
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"user", c.GetHeader(UserHeader),
			"duration", time.Since(start),
		)
	}
}

func requestMetrics(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.IncRequest(c.Request.Method+" "+route, strconv.Itoa(c.Writer.Status()))
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", UserHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
