// Package exchange defines the contract between feed connectors and the
// venue-specific wire adapters.
//
// A Venue knows how to open one order book subscription for a canonical
// symbol ("BTC/USDT"). The resulting Session yields normalized snapshots in
// receipt order until it fails or is closed. Sessions are single-use: any
// error returned by Next means the subscription is gone and the caller must
// Dial again.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rickgao/arb-ingest/internal/model"
)

// Errors
var (
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrSequenceGap   = errors.New("sequence gap in book updates")
	ErrCrossedBook   = errors.New("crossed book")
	ErrSessionClosed = errors.New("session closed")
)

// Venue opens order book subscriptions on one exchange.
type Venue interface {
	// Name returns the exchange identifier used in store keys (e.g. "binance").
	Name() string

	// Dial subscribes to the book for a canonical symbol. It returns once the
	// venue has accepted the subscription.
	Dial(ctx context.Context, symbol string) (Session, error)
}

// Session is one live order book subscription.
type Session interface {
	// Next blocks until the next book state is available.
	Next(ctx context.Context) (model.OrderBookSnapshot, error)

	// Close releases the underlying connection. It is safe to call twice.
	Close() error
}

// DecodeError reports a frame that could not be parsed.
type DecodeError struct {
	Frame []byte
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode frame: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ConcatSymbol maps "BTC/USDT" to "BTCUSDT".
func ConcatSymbol(symbol string) (string, error) {
	base, quote, ok := model.SplitSymbol(symbol)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	return strings.ToUpper(base + quote), nil
}
