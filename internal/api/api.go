// Package api exposes the HTTP trigger and status surface using Gin.
//
// The package is split as follows:
// - api.go: handler struct, dependencies, routing, server lifecycle
// - handler.go: HTTP request handlers
// - middleware.go: middleware functions
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/llenroc/surgebot/internal/metrics"
	"github.com/llenroc/surgebot/internal/trade"
)

const (
	DefaultTimeout      = 10 * time.Second
	ServiceName         = "surgebot"
	ServiceVersion      = "1.0.0"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// Controller is the trade surface the API needs: the single inbound trigger
// plus state inspection.
type Controller interface {
	CoinDetected(ctx context.Context, coin string) error
	State() trade.State
}

// Handler handles HTTP requests using the Gin framework.
type Handler struct {
	controller   Controller
	tracker      *metrics.Tracker
	baseCurrency string
	logger       *slog.Logger
}

// NewHandler creates an API handler.
func NewHandler(controller Controller, tracker *metrics.Tracker, baseCurrency string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		controller:   controller,
		tracker:      tracker,
		baseCurrency: baseCurrency,
		logger:       logger,
	}
}

// SetupRoutes builds the Gin engine with middleware and routes.
func (h *Handler) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.requestIDMiddleware())
	router.Use(h.loggingMiddleware())

	router.GET("/health", h.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/detect", h.Detect)
		v1.GET("/status", h.Status)
	}

	return router
}

// NewServer wraps the routes in an http.Server so main can shut it down
// gracefully.
func (h *Handler) NewServer(port int) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      h.SetupRoutes(),
		ReadTimeout:  DefaultTimeout,
		WriteTimeout: DefaultTimeout,
	}
}
