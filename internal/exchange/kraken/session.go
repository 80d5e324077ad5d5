package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rickgao/arb-ingest/internal/book"
	"github.com/rickgao/arb-ingest/internal/connection"
	"github.com/rickgao/arb-ingest/internal/exchange"
	"github.com/rickgao/arb-ingest/internal/model"
)

// session holds one book channel subscription.
type session struct {
	symbol      string // canonical, used in snapshots
	venueSymbol string
	conn        connection.Client
	book        *book.Book
	depth       int // subscribed depth, the book is truncated to it
	emit        int // levels emitted per side

	pending [][]byte // book frames received before the ack
	seeded  bool     // a snapshot frame has been applied
}

// awaitAck reads until the subscribe response for reqID arrives.
func (s *session) awaitAck(ctx context.Context, reqID int64) error {
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("await subscribe ack: %w", ctx.Err())
		case err := <-s.conn.Errors():
			return err
		case msg := <-s.conn.Messages():
			var env envelope
			if err := json.Unmarshal(msg.Data, &env); err != nil {
				return &exchange.DecodeError{Frame: msg.Data, Err: err}
			}

			switch {
			case env.Method == methodSubscribe && env.ReqID == reqID:
				if env.Success == nil || !*env.Success {
					return fmt.Errorf("%w: %s", ErrSubscribeRejected, env.Error)
				}
				return nil
			case env.Channel == channelBook:
				s.pending = append(s.pending, msg.Data)
			}
		}
	}
}

// Next returns the book after the next snapshot or update frame.
func (s *session) Next(ctx context.Context) (model.OrderBookSnapshot, error) {
	for len(s.pending) > 0 {
		frame := s.pending[0]
		s.pending = s.pending[1:]

		snap, ok, err := s.handle(frame)
		if err != nil || ok {
			return snap, err
		}
	}

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

			snap, ok, err := s.handle(msg.Data)
			if err != nil || ok {
				return snap, err
			}
		}
	}
}

// handle applies one frame. ok is false for frames that do not touch the book.
func (s *session) handle(data []byte) (model.OrderBookSnapshot, bool, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.OrderBookSnapshot{}, false, &exchange.DecodeError{Frame: data, Err: err}
	}

	// heartbeat, status and acknowledgements
	if env.Channel != channelBook {
		return model.OrderBookSnapshot{}, false, nil
	}

	var entries []bookData
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		return model.OrderBookSnapshot{}, false, &exchange.DecodeError{Frame: data, Err: err}
	}

	var tsMs int64
	applied := false
	for _, d := range entries {
		if d.Symbol != s.venueSymbol {
			continue
		}

		switch env.Type {
		case typeSnapshot:
			s.book.Reset(levels(d.Bids), levels(d.Asks))
			s.seeded = true
		case typeUpdate:
			// Updates before the first snapshot have no base to apply to.
			if !s.seeded {
				continue
			}
			for _, l := range levels(d.Bids) {
				s.book.Apply(book.Bid, l)
			}
			for _, l := range levels(d.Asks) {
				s.book.Apply(book.Ask, l)
			}
		default:
			continue
		}
		s.book.Truncate(s.depth)
		applied = true

		if d.Timestamp != "" {
			ts, err := time.Parse(time.RFC3339Nano, d.Timestamp)
			if err != nil {
				return model.OrderBookSnapshot{}, false, &exchange.DecodeError{Frame: data, Err: err}
			}
			tsMs = ts.UnixMilli()
		}
	}

	if !applied {
		return model.OrderBookSnapshot{}, false, nil
	}
	if s.book.Crossed() {
		return model.OrderBookSnapshot{}, false, exchange.ErrCrossedBook
	}

	return s.book.Snapshot(Name, s.symbol, s.emit, tsMs), true, nil
}

// Close closes the connection.
func (s *session) Close() error {
	return s.conn.Close()
}

func levels(raw []bookLevel) []book.Level {
	out := make([]book.Level, len(raw))
	for i, l := range raw {
		out[i] = book.Level{Price: l.Price, Size: l.Qty}
	}
	return out
}
