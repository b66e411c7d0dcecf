package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idm_bridge/internal/api"
	"idm_bridge/internal/auth"
	"idm_bridge/internal/bridge"
	"idm_bridge/internal/collector"
	"idm_bridge/internal/config"
	"idm_bridge/internal/mapper"
	"idm_bridge/internal/poller"
	"idm_bridge/internal/statetree"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting IDM bridge", "listen_addr", cfg.ListenAddr, "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)
	if cfg.InsecureTLS {
		logger.Warn("TLS certificate verification is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// State tree; the will clears info.connection if the bridge dies
	store, err := statetree.NewMQTTStore(statetree.MQTTOptions{
		Broker:    cfg.MQTT.Broker,
		ClientID:  cfg.MQTT.ClientID,
		Username:  cfg.MQTT.Username,
		Password:  cfg.MQTT.Password,
		Prefix:    cfg.MQTT.Topic,
		QoS:       1,
		WillID:    mapper.StateConnection,
		WillValue: false,
	}, logger)
	if err != nil {
		logger.Error("Failed to create MQTT client", "error", err)
		os.Exit(1)
	}
	if err := store.Connect(ctx); err != nil {
		logger.Error("Failed to connect to MQTT broker", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.SetState(ctx, mapper.StateConnection, false, true); err != nil {
		logger.Warn("Failed to reset connection state", "error", err)
	}

	client := api.NewAPIClient(api.Options{
		BaseURL:            cfg.BaseURL,
		Timeout:            cfg.RequestTimeout,
		InsecureSkipVerify: cfg.InsecureTLS,
	}, logger)

	codec := mapper.NewCodec(cfg.Codes.Overrides())
	p := poller.New(client, codec, store, logger)

	creds := auth.Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
	}

	var b *bridge.Bridge
	sessions := auth.NewSessionManager(client, creds, store, cfg.ReloadInterval, func() { b.Refresh() }, logger)

	bridgeCollector := collector.NewBridgeCollector(p, sessions)
	b = bridge.New(sessions, p, client, store, bridgeCollector, logger)

	if err := store.Subscribe(b.Handler(ctx)); err != nil {
		logger.Error("Failed to subscribe to command topics", "error", err)
		os.Exit(1)
	}
	logger.Debug("Accepting commands", "ids", mapper.CommandIDs([]int{0}))

	// Create and register Prometheus collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		bridgeCollector,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Setup HTTP server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", healthHandler)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Runs until SIGINT/SIGTERM; stops the reload timer on return
	if err := b.Run(ctx); err != nil {
		logger.Error("Control loop error", "error", err)
	}

	logger.Info("Shutting down gracefully...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}

	if err := store.SetState(shutdownCtx, mapper.StateConnection, false, true); err != nil {
		logger.Warn("Failed to clear connection state", "error", err)
	}

	logger.Info("Bridge stopped")
}

// setupLogger creates a structured logger based on configuration.
func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler

	logLevel := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// healthHandler responds to health check requests.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK\n"))
}
