package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/arb-ingest/internal/config"
	"github.com/rickgao/arb-ingest/internal/connection"
	"github.com/rickgao/arb-ingest/internal/database"
	"github.com/rickgao/arb-ingest/internal/exchange"
	"github.com/rickgao/arb-ingest/internal/exchange/binance"
	"github.com/rickgao/arb-ingest/internal/exchange/kraken"
	"github.com/rickgao/arb-ingest/internal/feed"
	"github.com/rickgao/arb-ingest/internal/metrics"
	"github.com/rickgao/arb-ingest/internal/supervisor"
	"github.com/rickgao/arb-ingest/internal/version"
	"github.com/rickgao/arb-ingest/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/ingester.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting ingester",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = logger.With("instance_id", cfg.Instance.ID)
	logger.Info("configuration loaded",
		"exchanges", cfg.Exchanges,
		"symbols", cfg.Symbols,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// The store may come up after us; writes fail until it does and each
	// failed write only drops that update.
	rdb := database.Open(cfg.Store)
	defer rdb.Close()

	if err := database.Ping(ctx, rdb); err != nil {
		logger.Warn("store not reachable yet", "addr", database.BuildAddr(cfg.Store), "error", err)
	} else {
		logger.Info("store connected", "addr", database.BuildAddr(cfg.Store))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	tickerWriter := writer.NewTickerWriter(
		writer.WriterConfig{WriteTimeout: cfg.Store.WriteTimeout},
		rdb,
		logger.With("component", "writer"),
	)

	sup, err := supervisor.New(
		supervisor.Config{
			StartupGrace: cfg.Ingest.StartupGrace,
			Feed: feed.Config{
				Cooldown:         cfg.Ingest.Cooldown,
				MaxCooldown:      cfg.Ingest.MaxCooldown,
				SubscribeTimeout: cfg.Ingest.SubscribeTimeout,
			},
		},
		cfg.Pairs(),
		buildVenues(cfg, logger),
		tickerWriter,
		m,
		logger.With("component", "feed"),
	)
	if err != nil {
		logger.Error("failed to build supervisor", "error", err)
		os.Exit(1)
	}

	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: createHealthHandler(rdb, sup, reg, cfg.Metrics.Path),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting health server", "port", cfg.Metrics.Port)
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		// Graceful shutdown of health server
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return sup.Run(gctx)
	})

	logger.Info("ingester running",
		"feeds", len(sup.States()),
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	if err := g.Wait(); err != nil {
		logger.Error("ingester failed", "error", err)
		os.Exit(1)
	}

	stats := tickerWriter.Stats()
	logger.Info("ingester stopped",
		"writes", stats.Writes,
		"write_errors", stats.Errors,
	)
}

// buildVenues creates an adapter for every configured exchange.
func buildVenues(cfg *config.Config, logger *slog.Logger) []exchange.Venue {
	conn := connection.DefaultClientConfig()
	conn.HandshakeTimeout = cfg.Ingest.SubscribeTimeout

	var venues []exchange.Venue
	for _, name := range cfg.Exchanges {
		switch name {
		case config.ExchangeBinance:
			venues = append(venues, binance.New(binance.Config{
				WSURL:         cfg.Venues.Binance.WSURL,
				RestURL:       cfg.Venues.Binance.RestURL,
				RestTimeout:   cfg.Venues.Binance.RestTimeout,
				SnapshotLimit: cfg.Venues.Binance.SnapshotLimit,
				BookDepth:     cfg.Ingest.BookDepth,
				Connection:    conn,
			}, logger))
		case config.ExchangeKraken:
			venues = append(venues, kraken.New(kraken.Config{
				WSURL:      cfg.Venues.Kraken.WSURL,
				BookDepth:  cfg.Ingest.BookDepth,
				Connection: conn,
			}, logger))
		}
	}
	return venues
}

// createHealthHandler creates the HTTP handler for health checks and metrics.
func createHealthHandler(rdb *redis.Client, sup *supervisor.Supervisor, reg *prometheus.Registry, metricsPath string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Version    string         `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.String(),
			Components: make(map[string]any),
		}

		// Check store
		if err := database.Ping(ctx, rdb); err != nil {
			health.Status = "unhealthy"
			health.Components["redis"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["redis"] = "connected"
		}

		// Check connectors
		counts := make(map[string]int)
		for _, st := range sup.States() {
			counts[st.Status.String()]++
		}
		health.Components["connectors"] = counts
		if counts[feed.StatusStreaming.String()] < len(sup.States()) && health.Status == "healthy" {
			health.Status = "degraded"
		}

		// Set response
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/connectors", func(w http.ResponseWriter, r *http.Request) {
		states := sup.States()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"count":      len(states),
			"connectors": states,
		})
	})

	return mux
}
