package api

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/llenroc/surgebot/internal/trade"
)

// detectRequest is the body of POST /api/v1/detect.
type detectRequest struct {
	Coin string `json:"coin" binding:"required"`
}

// detectResponse acknowledges an accepted detection.
type detectResponse struct {
	Coin string `json:"coin"`
	Pair string `json:"pair"`
}

// statusResponse is the JSON shape of GET /api/v1/status.
type statusResponse struct {
	Operational  bool    `json:"operational"`
	State        string  `json:"state"`
	Coin         string  `json:"coin,omitempty"`
	Pair         string  `json:"pair,omitempty"`
	BuyPrice     float64 `json:"buy_price"`
	CurrentPrice float64 `json:"current_price"`
	RateOfChange float64 `json:"rate_of_change"`
	Rising       uint64  `json:"rising"`
	Falling      uint64  `json:"falling"`
	Orders       int     `json:"orders"`
	PollsTotal   int64   `json:"polls_total"`
	TicksTotal   int64   `json:"ticks_total"`
	StreamStatus string  `json:"stream_status"`
	UptimeSec    float64 `json:"uptime_seconds"`
}

var coinPattern = regexp.MustCompile(`^[A-Z0-9]{2,12}$`)

// Detect handles POST /api/v1/detect — the single inbound trigger that starts
// one trade cycle.
func (h *Handler) Detect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coin is required"})
		return
	}

	coin := strings.ToUpper(strings.TrimSpace(req.Coin))
	if !coinPattern.MatchString(coin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coin must be a 2-12 character asset code"})
		return
	}

	// The cycle outlives this request, so it must not inherit the request
	// context.
	if err := h.controller.CoinDetected(context.Background(), coin); err != nil {
		h.handleTriggerError(c, coin, err)
		return
	}

	c.JSON(http.StatusAccepted, detectResponse{
		Coin: coin,
		Pair: coin + h.baseCurrency,
	})
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(c *gin.Context) {
	snap := h.tracker.Snapshot()

	c.JSON(http.StatusOK, statusResponse{
		Operational:  snap.Operational,
		State:        snap.State,
		Coin:         snap.Coin,
		Pair:         snap.Pair,
		BuyPrice:     snap.BuyPrice,
		CurrentPrice: snap.CurrentPrice,
		RateOfChange: snap.RateOfChange,
		Rising:       snap.Rising,
		Falling:      snap.Falling,
		Orders:       len(snap.Orders),
		PollsTotal:   snap.PollsTotal,
		TicksTotal:   snap.TicksTotal,
		StreamStatus: snap.StreamStatus,
		UptimeSec:    snap.Uptime.Seconds(),
	})
}

// HealthCheck handles GET /health requests.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// handleTriggerError maps trigger failures to HTTP statuses.
func (h *Handler) handleTriggerError(c *gin.Context, coin string, err error) {
	h.logger.Warn("detect_rejected", "coin", coin, "error", err)

	switch {
	case errors.Is(err, trade.ErrCycleActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": string(h.controller.State())})
	case errors.Is(err, trade.ErrNotOperational):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
