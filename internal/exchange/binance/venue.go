// Package binance adapts the Binance spot diff-depth stream to exchange.Venue.
//
// The local book is seeded from a REST snapshot and kept in sync with the
// stream using the update id rules from the Binance API documentation:
// events with u <= lastUpdateId are dropped, the first applied event must
// straddle lastUpdateId+1, and every later event must start right after the
// previous one. Any break in that chain ends the session.
package binance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rickgao/arb-ingest/internal/api"
	"github.com/rickgao/arb-ingest/internal/book"
	"github.com/rickgao/arb-ingest/internal/connection"
	"github.com/rickgao/arb-ingest/internal/exchange"
)

// Venue implements exchange.Venue for Binance spot.
type Venue struct {
	cfg    Config
	rest   *api.Client
	logger *slog.Logger
}

// New creates a Binance venue.
func New(cfg Config, logger *slog.Logger) *Venue {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Connection.BufferSize == 0 {
		cfg.Connection = connection.DefaultClientConfig()
	}

	opts := []api.ClientOption{api.WithLogger(logger)}
	if cfg.RestTimeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.RestTimeout))
	}

	return &Venue{
		cfg:    cfg,
		rest:   api.NewClient(cfg.RestURL, opts...),
		logger: logger.With("exchange", Name),
	}
}

// Name returns "binance".
func (v *Venue) Name() string {
	return Name
}

// StreamURL returns the diff-depth stream URL for a venue symbol.
func (v *Venue) StreamURL(venueSymbol string) string {
	return strings.TrimRight(v.cfg.WSURL, "/") + "/" + strings.ToLower(venueSymbol) + "@depth@100ms"
}

// Dial opens the stream first so no event between the REST snapshot and the
// first frame is lost; frames queue in the client until Next drains them.
func (v *Venue) Dial(ctx context.Context, symbol string) (exchange.Session, error) {
	venueSymbol, err := exchange.ConcatSymbol(symbol)
	if err != nil {
		return nil, err
	}

	ccfg := v.cfg.Connection
	ccfg.URL = v.StreamURL(venueSymbol)

	conn := connection.NewClient(ccfg, v.logger)
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}

	snap, err := v.rest.GetDepth(ctx, venueSymbol, v.cfg.SnapshotLimit)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("depth snapshot %s: %w", venueSymbol, err)
	}

	b := book.New()
	b.Reset(api.Levels(snap.Bids), api.Levels(snap.Asks))

	v.logger.Debug("depth snapshot loaded",
		"symbol", symbol,
		"last_update_id", snap.LastUpdateID,
		"bids", b.Len(book.Bid),
		"asks", b.Len(book.Ask),
	)

	return &session{
		symbol:       symbol,
		conn:         conn,
		book:         b,
		keep:         v.keepLevels(),
		depth:        v.cfg.BookDepth,
		lastUpdateID: snap.LastUpdateID,
	}, nil
}

func (v *Venue) keepLevels() int {
	if v.cfg.SnapshotLimit > v.cfg.BookDepth {
		return v.cfg.SnapshotLimit
	}
	return v.cfg.BookDepth
}
