// Package http assembles the gin route tree and owns the HTTP server
// lifecycle.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/prometheus"
	"github.com/veriflowhq/veriflow/internal/interfaces/http/handlers"
	"github.com/veriflowhq/veriflow/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware for the route tree.
type RouterConfig struct {
	Mode string // gin mode: debug|release|test

	VerificationHandler *handlers.VerificationHandler
	HealthHandler       *handlers.HealthHandler
	SearchHandler       *handlers.SearchHandler // optional; nil disables /verifications/search

	Auth      *middleware.AuthMiddleware
	Logging   *middleware.LoggingMiddleware
	RateLimit *middleware.RateLimitMiddleware
	Metrics   *middleware.MetricsMiddleware

	MetricsRegistry *prometheus.Metrics
}

// NewRouter wires global middleware, public probes, and the authenticated
// API group into one handler.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Handler())
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Handler())
	}

	// Probes and metrics stay outside auth so orchestrators can reach them.
	r.GET("/healthz", cfg.HealthHandler.Live)
	r.GET("/readyz", cfg.HealthHandler.Ready)
	if cfg.MetricsRegistry != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsRegistry.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.Auth != nil {
		api.Use(cfg.Auth.Handler())
	}
	if cfg.RateLimit != nil {
		api.Use(cfg.RateLimit.Handler())
	}

	verifications := api.Group("/verifications")
	{
		verifications.POST("/individual", cfg.VerificationHandler.VerifyIndividual)
		verifications.POST("/corporate", cfg.VerificationHandler.VerifyCorporate)
		verifications.POST("/complete", cfg.VerificationHandler.VerifyComplete)
		verifications.GET("", cfg.VerificationHandler.List)
		if cfg.SearchHandler != nil {
			verifications.GET("/search", cfg.SearchHandler.Search)
		}
		verifications.GET("/:id", cfg.VerificationHandler.Get)
	}

	return r
}
