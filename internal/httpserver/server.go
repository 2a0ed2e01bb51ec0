package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paymentsops/ipn-ingest/internal/auth"
	"github.com/paymentsops/ipn-ingest/internal/config"
	"github.com/paymentsops/ipn-ingest/internal/handlers"
	"github.com/paymentsops/ipn-ingest/internal/models"
)

// Store is what the router needs from persistence: the recorder for the
// notification pipeline and a ping for readiness.
type Store interface {
	handlers.Recorder
	Ping(ctx context.Context) error
}

// NewRouter wires the public liveness endpoints and the authenticated
// notification pipeline.
// Public: GET /, GET /ready
// Authenticated: POST on each configured IPN path
func NewRouter(cfg config.Config, st Store, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(requestLog(logger))
	// A panic anywhere in the pipeline must still close the request with the
	// contract body; the bank treats 500 as a retry signal.
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("panic in request pipeline",
			"path", c.Request.URL.Path,
			"panic", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.IPNResponse{
			MessageCode: "500",
			Message:     "Internal server error",
		})
	}))

	// Liveness for uptime monitors: unauthenticated, static, always 200.
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ipn-ingest up")
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// The notification pipeline sits behind both credential schemes.
	authGroup := r.Group("/")
	authGroup.Use(auth.Middleware(auth.NewAuthenticator(cfg), logger))

	handlers.RegisterIPNRoutes(authGroup, cfg.IPNPaths, st, logger)

	return r
}

// requestLog tags every request with an id and logs its completion. The id
// correlates the access line with the pipeline's own log lines via the
// response header.
func requestLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Header("X-Request-Id", id)
		start := time.Now()

		c.Next()

		logger.Info("request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP())
	}
}
