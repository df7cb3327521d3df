// Package main provides the support chatbot HTTP server entry point.
package main

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edufuture/edubot/internal/buildinfo"
	"github.com/edufuture/edubot/internal/config"
	"github.com/edufuture/edubot/internal/storage"
)

// setupRoutes configures all HTTP routes.
// chatLimiter is optional rate limiting middleware for the chat endpoint.
func setupRoutes(engine *gin.Engine, chat *chatHandler, db *storage.DB, registry *prometheus.Registry, cfg *config.Config, chatLimiter ...gin.HandlerFunc) {
	// Root endpoint - service identification
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "edubot",
			"version": buildinfo.Version,
		})
	}
	engine.GET("/", rootHandler)
	engine.HEAD("/", rootHandler)

	// Liveness probe - only that the process is running, never dependencies
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	engine.GET("/healthz", healthHandler)
	engine.HEAD("/healthz", healthHandler)

	// Readiness probe - checks the transcript archive
	readyHandler := func(c *gin.Context) {
		if err := db.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
		})
	}
	engine.GET("/readyz", readyHandler)
	engine.HEAD("/readyz", readyHandler)

	// Chat API
	chatHandlers := append(append([]gin.HandlerFunc{}, chatLimiter...), chat.Handle)
	engine.POST("/chat", chatHandlers...)
	engine.GET("/sessions/:id/transcript", chat.HandleTranscript)

	// Prometheus metrics endpoint, basic auth when a password is configured
	metricsAuth := metricsAuthMiddleware(cfg.MetricsPassword != "", cfg.MetricsUsername, cfg.MetricsPassword)
	engine.GET("/metrics", metricsAuth, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

// metricsAuthMiddleware enforces Basic Auth for /metrics.
// If enabled is false, authentication is disabled (pass-through).
func metricsAuthMiddleware(enabled bool, username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		user, pass, hasAuth := c.Request.BasicAuth()
		if !hasAuth {
			c.Header("WWW-Authenticate", `Basic realm="metrics"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Constant-time comparison to prevent timing attacks
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1

		if !userMatch || !passMatch {
			c.Header("WWW-Authenticate", `Basic realm="metrics"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}
