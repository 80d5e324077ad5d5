package main

import (
	"context"
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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/arb-ingest/internal/arbitrage"
	"github.com/rickgao/arb-ingest/internal/config"
	"github.com/rickgao/arb-ingest/internal/database"
	"github.com/rickgao/arb-ingest/internal/metrics"
	"github.com/rickgao/arb-ingest/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/ingester.yaml", "path to config file")
	metricsPort := flag.Int("metrics-port", 0, "serve scanner metrics on this port (0 disables)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting spreadwatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rdb, err := database.Connect(ctx, cfg.Store)
	if err != nil {
		logger.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	if *metricsPort > 0 {
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", *metricsPort),
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer srv.Close()
	}

	scanner := arbitrage.New(arbitrage.Config{
		Exchanges:    cfg.Exchanges,
		Symbols:      cfg.Symbols,
		PollInterval: cfg.Scanner.PollInterval,
		FeePct:       cfg.Scanner.FeePct,
		Investment:   cfg.Scanner.Investment,
		StaleAfter:   cfg.Scanner.StaleAfter,
		Timeout:      cfg.Store.WriteTimeout,
	}, rdb, nil, m, logger.With("component", "scanner"))

	if err := scanner.Start(ctx); err != nil {
		logger.Error("failed to start scanner", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := scanner.Stop(stopCtx); err != nil {
		logger.Warn("scanner did not stop cleanly", "error", err)
	}
}
