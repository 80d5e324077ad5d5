// Package supervisor builds and runs one feed connector per configured
// (exchange, symbol) pair.
//
// Connectors share nothing but the publisher. The supervisor never steps into
// a connector's retry loop; it only starts them after the startup grace period
// and waits for all of them once the run context is cancelled.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/arb-ingest/internal/config"
	"github.com/rickgao/arb-ingest/internal/exchange"
	"github.com/rickgao/arb-ingest/internal/feed"
	"github.com/rickgao/arb-ingest/internal/metrics"
)

// Config holds supervisor configuration.
type Config struct {
	StartupGrace time.Duration // Wait before the first dial
	Feed         feed.Config
}

// Supervisor owns the connector set.
type Supervisor struct {
	cfg        Config
	connectors []*feed.Connector
	logger     *slog.Logger
}

// New creates a connector for every pair. It fails with config.ErrInvalid
// when there are no pairs or a pair names an exchange without a venue.
func New(cfg Config, pairs []config.Pair, venues []exchange.Venue, publisher feed.Publisher, m *metrics.Metrics, logger *slog.Logger) (*Supervisor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no feeds configured", config.ErrInvalid)
	}

	byName := make(map[string]exchange.Venue, len(venues))
	for _, v := range venues {
		byName[v.Name()] = v
	}

	s := &Supervisor{
		cfg:    cfg,
		logger: logger,
	}

	for _, p := range pairs {
		venue, ok := byName[p.Exchange]
		if !ok {
			return nil, fmt.Errorf("%w: unknown exchange %q", config.ErrInvalid, p.Exchange)
		}
		if p.Symbol == "" {
			return nil, fmt.Errorf("%w: empty symbol for %s", config.ErrInvalid, p.Exchange)
		}
		s.connectors = append(s.connectors, feed.NewConnector(cfg.Feed, venue, p.Symbol, publisher, logger, feed.WithMetrics(m)))
	}

	return s, nil
}

// Run starts every connector and blocks until ctx is cancelled and all of
// them have stopped.
func (s *Supervisor) Run(ctx context.Context) error {
	s.logger.Info("supervisor starting",
		"feeds", len(s.connectors),
		"startup_grace", s.cfg.StartupGrace,
	)

	if s.cfg.StartupGrace > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(s.cfg.StartupGrace):
		}
	}

	var g errgroup.Group
	for _, c := range s.connectors {
		g.Go(func() error {
			return c.Run(ctx)
		})
	}

	err := g.Wait()
	s.logger.Info("supervisor stopped")
	return err
}

// States returns a snapshot of every connector's state, in pair order.
func (s *Supervisor) States() []feed.StateSnapshot {
	out := make([]feed.StateSnapshot, len(s.connectors))
	for i, c := range s.connectors {
		out[i] = c.State()
	}
	return out
}
