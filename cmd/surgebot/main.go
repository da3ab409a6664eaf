// Package main is the entry point for the surgebot trading engine.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/llenroc/surgebot/internal/api"
	"github.com/llenroc/surgebot/internal/config"
	"github.com/llenroc/surgebot/internal/exchange"
	"github.com/llenroc/surgebot/internal/metrics"
	"github.com/llenroc/surgebot/internal/trade"
	"github.com/llenroc/surgebot/internal/ui"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// Log startup with configuration (secrets masked)
	slog.Info("surgebot starting",
		"version", "1.0.0",
	)

	slog.Info("config_loaded",
		"binance_rest_url", cfg.BinanceRESTURL,
		"binance_ws_url", cfg.BinanceWSURL,
		"api_key", cfg.MaskedAPIKey(),
		"api_secret", cfg.MaskedSecret(),
		"base_currency", cfg.BaseCurrency,
		"placement_percentage", cfg.PlacementPercentage,
		"fee", cfg.Fee,
		"take_profit_percentage", cfg.TakeProfitPercentage,
		"poll_interval", cfg.PollInterval,
		"max_poll_attempts", cfg.MaxPollAttempts,
		"api_port", cfg.APIPort,
		"prometheus_port", cfg.PrometheusPort,
		"enable_tui", cfg.EnableTUI,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize metrics tracker and Prometheus endpoint
	tracker := metrics.NewTracker()

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.PrometheusPort),
		Handler: promhttp.Handler(),
	}
	go func() {
		slog.Info("metrics_server_started", "port", cfg.PrometheusPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics_server_error", "error", err)
		}
	}()

	// Exchange client
	client := exchange.NewClient(cfg.BinanceRESTURL, cfg.BinanceWSURL, cfg.BinanceAPIKey, cfg.BinanceSecret)

	// Display sink: TUI when enabled, otherwise a no-op (logs still cover it)
	var display trade.Display = trade.NopDisplay{}
	var app *ui.App
	if cfg.EnableTUI {
		app = ui.NewApp(tracker, cfg.UIRefreshRate)
		display = app
	}

	// Trade controller with one-time startup fetch
	controller := trade.NewController(cfg, client, client, display, tracker)
	if err := controller.Init(ctx); err != nil {
		// Non-operational: the controller refuses detections until restarted
		// with working credentials, instead of trading against a zero budget.
		slog.Error("controller_init_failed", "error", err)
	}

	// HTTP trigger API
	handler := api.NewHandler(controller, tracker, cfg.BaseCurrency, logger)
	apiServer := handler.NewServer(cfg.APIPort)
	go func() {
		slog.Info("api_server_started", "port", cfg.APIPort)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api_server_error", "error", err)
			cancel()
		}
	}()

	slog.Info("engine_started",
		"status", "waiting for coin detection",
		"operational", controller.Operational(),
		"tui_enabled", cfg.EnableTUI,
	)

	// Start TUI or run in background mode
	if app != nil {
		// TUI mode (blocking); still handle signals
		go func() {
			if err := app.Run(); err != nil {
				slog.Error("tui_error", "error", err)
			}
			cancel()
		}()

		select {
		case sig := <-sigChan:
			slog.Info("shutdown_signal_received", "signal", sig.String())
			app.Stop()
		case <-ctx.Done():
			app.Stop()
		}
	} else {
		// Background mode - just wait for signal
		select {
		case sig := <-sigChan:
			slog.Info("shutdown_signal_received", "signal", sig.String())
		case <-ctx.Done():
		}
	}

	cancel()

	// Graceful shutdown
	slog.Info("shutting_down", "status", "stopping trade cycle")
	controller.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("api_shutdown_error", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("metrics_shutdown_error", "error", err)
	}

	slog.Info("shutdown_complete")
}

// setupLogger creates a structured logger with the specified level.
// Format: 2025-01-04 14:32:01 [INFO]  message key=value
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format("2006-01-02 15:04:05"))
				}
			}
			return a
		},
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}
