package binance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rickgao/arb-ingest/internal/api"
	"github.com/rickgao/arb-ingest/internal/book"
	"github.com/rickgao/arb-ingest/internal/connection"
	"github.com/rickgao/arb-ingest/internal/exchange"
	"github.com/rickgao/arb-ingest/internal/model"
)

// session holds one synchronized diff-depth subscription.
type session struct {
	symbol string
	conn   connection.Client
	book   *book.Book
	keep   int // levels retained per side
	depth  int // levels emitted per side

	lastUpdateID int64 // u of the last applied event, or the snapshot id
	synced       bool  // at least one event applied since the snapshot
}

// Next applies stream events until one changes the book.
func (s *session) Next(ctx context.Context) (model.OrderBookSnapshot, error) {
	for {
		select {
		case <-ctx.Done():
			return model.OrderBookSnapshot{}, ctx.Err()
		case err := <-s.conn.Errors():
			return model.OrderBookSnapshot{}, err
		case msg, ok := <-s.conn.Messages():
			if !ok {
				return model.OrderBookSnapshot{}, exchange.ErrSessionClosed
			}

			applied, ts, err := s.handle(msg.Data)
			if err != nil {
				return model.OrderBookSnapshot{}, err
			}
			if !applied {
				continue
			}
			return s.book.Snapshot(Name, s.symbol, s.depth, ts), nil
		}
	}
}

// handle applies one frame and reports whether it changed the book.
func (s *session) handle(data []byte) (bool, int64, error) {
	var ev depthEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return false, 0, &exchange.DecodeError{Frame: data, Err: err}
	}
	if ev.Event != eventDepthUpdate {
		return false, 0, nil
	}

	// Already covered by the snapshot or a previous event.
	if ev.FinalID <= s.lastUpdateID {
		return false, 0, nil
	}

	next := s.lastUpdateID + 1
	if s.synced {
		if ev.FirstID != next {
			return false, 0, fmt.Errorf("%w: expected U=%d, got U=%d", exchange.ErrSequenceGap, next, ev.FirstID)
		}
	} else if ev.FirstID > next {
		return false, 0, fmt.Errorf("%w: first event U=%d after snapshot %d", exchange.ErrSequenceGap, ev.FirstID, s.lastUpdateID)
	}

	for _, l := range api.Levels(ev.Bids) {
		s.book.Apply(book.Bid, l)
	}
	for _, l := range api.Levels(ev.Asks) {
		s.book.Apply(book.Ask, l)
	}
	s.book.Truncate(s.keep)

	s.lastUpdateID = ev.FinalID
	s.synced = true

	if s.book.Crossed() {
		return false, 0, fmt.Errorf("%w at update %d", exchange.ErrCrossedBook, ev.FinalID)
	}

	return true, ev.EventTime, nil
}

// Close closes the stream connection.
func (s *session) Close() error {
	return s.conn.Close()
}
