// Package kraken adapts the Kraken spot v2 book channel to exchange.Venue.
//
// A session subscribes to one symbol, waits for the subscribe acknowledgement
// and then maintains a local book: a snapshot frame replaces it, an update
// frame upserts levels (qty 0 removes one) and the book is cut back to the
// subscribed depth.
package kraken

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/rickgao/arb-ingest/internal/book"
	"github.com/rickgao/arb-ingest/internal/connection"
	"github.com/rickgao/arb-ingest/internal/exchange"
	"github.com/rickgao/arb-ingest/internal/model"
)

// ErrSubscribeRejected is returned when Kraken refuses a subscription.
var ErrSubscribeRejected = errors.New("subscription rejected")

// Venue implements exchange.Venue for Kraken spot.
type Venue struct {
	cfg    Config
	logger *slog.Logger
	reqID  atomic.Int64
}

// New creates a Kraken venue.
func New(cfg Config, logger *slog.Logger) *Venue {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Connection.BufferSize == 0 {
		cfg.Connection = connection.DefaultClientConfig()
	}
	return &Venue{
		cfg:    cfg,
		logger: logger.With("exchange", Name),
	}
}

// Name returns "kraken".
func (v *Venue) Name() string {
	return Name
}

// Dial connects, subscribes and waits for the acknowledgement. Book frames
// that race ahead of the ack are kept for the first Next calls.
func (v *Venue) Dial(ctx context.Context, symbol string) (exchange.Session, error) {
	if _, _, ok := model.SplitSymbol(symbol); !ok {
		return nil, fmt.Errorf("%w: %q", exchange.ErrUnknownSymbol, symbol)
	}
	venueSymbol := strings.ToUpper(symbol)

	ccfg := v.cfg.Connection
	ccfg.URL = v.cfg.WSURL

	conn := connection.NewClient(ccfg, v.logger)
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}

	depth := SubscriptionDepth(v.cfg.BookDepth)
	req := subscribeRequest{
		Method: methodSubscribe,
		Params: subscribeParams{
			Channel:  channelBook,
			Symbol:   []string{venueSymbol},
			Depth:    depth,
			Snapshot: true,
		},
		ReqID: v.reqID.Add(1),
	}
	if err := conn.SendJSON(req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send subscribe: %w", err)
	}

	s := &session{
		symbol:      symbol,
		venueSymbol: venueSymbol,
		conn:        conn,
		book:        book.New(),
		depth:       depth,
		emit:        v.cfg.BookDepth,
	}

	if err := s.awaitAck(ctx, req.ReqID); err != nil {
		conn.Close()
		return nil, err
	}

	v.logger.Debug("book subscription acknowledged",
		"symbol", symbol,
		"depth", depth,
		"req_id", req.ReqID,
	)

	return s, nil
}
