// Package router sets up the API routes for the application.
// It wires the webhook-driven PR review pipeline and its
// reliability-admin endpoints onto the HTTP server.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/verustcode/verustcode/consts"
	"github.com/verustcode/verustcode/internal/api/middleware"
	"github.com/verustcode/verustcode/internal/config"
	"github.com/verustcode/verustcode/internal/git/providers"
	"github.com/verustcode/verustcode/internal/store"
)

// Setup configures all API routes. The returned cleanup stops any
// background services the routes started; safe to call even when none
// were.
func Setup(r *gin.Engine, p *providers.Manager, cfg *config.Config, s store.Store) func() {
	// Apply global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))

	// Apply OpenTelemetry tracing middleware
	r.Use(otelgin.Middleware(consts.ServiceName))

	// Health check endpoint (public)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Automated PR review pipeline: webhook intake, reliability-admin
	// endpoints, feedback harvester.
	cleanup := func() {}
	if cfg.PRReview.Enabled {
		if stop := setupPRReview(r, p, cfg, s); stop != nil {
			cleanup = stop
		}
	}

	return cleanup
}
