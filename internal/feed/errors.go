package feed

import (
	"errors"
	"fmt"

	"github.com/rickgao/arb-ingest/internal/exchange"
)

// Stream failure kinds.
const (
	OpDial   = "dial"
	OpRead   = "read"
	OpDecode = "decode"
	OpPanic  = "panic"
)

// StreamError is a recoverable failure of one subscription.
type StreamError struct {
	Exchange string
	Symbol   string
	Op       string
	Err      error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Exchange, e.Symbol, e.Op, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// readOp classifies an error returned by Session.Next.
func readOp(err error) string {
	var decodeErr *exchange.DecodeError
	if errors.As(err, &decodeErr) {
		return OpDecode
	}
	return OpRead
}

// panicError carries a recovered panic value.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
