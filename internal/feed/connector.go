package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/arb-ingest/internal/derive"
	"github.com/rickgao/arb-ingest/internal/exchange"
	"github.com/rickgao/arb-ingest/internal/metrics"
	"github.com/rickgao/arb-ingest/internal/model"
)

// Skip reasons reported to metrics.
const (
	SkipEmptySide = "empty_side"
	SkipStoreDown = "store_error"
)

// Publisher stores derived ticker records.
type Publisher interface {
	Publish(ctx context.Context, rec model.TickerRecord) error
}

// Config holds connector timing.
type Config struct {
	Cooldown         time.Duration // Wait after the first failure
	MaxCooldown      time.Duration // Cap for repeated failures; <= Cooldown keeps it fixed
	SubscribeTimeout time.Duration // Bound on Venue.Dial
}

// DefaultConfig returns the fixed 5s cooldown.
func DefaultConfig() Config {
	return Config{
		Cooldown:         5 * time.Second,
		MaxCooldown:      5 * time.Second,
		SubscribeTimeout: 15 * time.Second,
	}
}

// Option configures a Connector.
type Option func(*Connector)

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Connector) {
		c.metrics = m
	}
}

// WithClock sets the time source used for receive stamps and state.
func WithClock(now func() time.Time) Option {
	return func(c *Connector) {
		c.now = now
	}
}

// Connector streams one (exchange, symbol) book into the store.
type Connector struct {
	cfg       Config
	venue     exchange.Venue
	exchange  string
	symbol    string
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	state StateSnapshot
}

// NewConnector creates a connector for symbol on venue.
func NewConnector(cfg Config, venue exchange.Venue, symbol string, publisher Publisher, logger *slog.Logger, opts ...Option) *Connector {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Connector{
		cfg:       cfg,
		venue:     venue,
		exchange:  venue.Name(),
		symbol:    symbol,
		publisher: publisher,
		logger:    logger.With("exchange", venue.Name(), "symbol", symbol),
		now:       time.Now,
		state: StateSnapshot{
			Exchange: venue.Name(),
			Symbol:   symbol,
			Status:   StatusStarting,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Exchange returns the venue name.
func (c *Connector) Exchange() string {
	return c.exchange
}

// Symbol returns the canonical symbol.
func (c *Connector) Symbol() string {
	return c.symbol
}

// State returns a copy of the current state.
func (c *Connector) State() StateSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Run streams until ctx is cancelled. Stream failures are retried after the
// cooldown; Run itself only returns, with nil, once ctx is done.
func (c *Connector) Run(ctx context.Context) error {
	defer c.setStatus(StatusStopped)

	for {
		err := c.stream(ctx)
		if ctx.Err() != nil {
			c.logger.Info("connector stopped")
			return nil
		}

		failures, kind := c.recordFailure(err)
		cooldown := c.cooldown(failures)

		c.logger.Warn("feed interrupted, retrying",
			"err", err,
			"kind", kind,
			"failures", failures,
			"cooldown", cooldown,
		)

		c.setStatus(StatusBackoff)
		select {
		case <-ctx.Done():
			c.logger.Info("connector stopped")
			return nil
		case <-time.After(cooldown):
		}

		c.mu.Lock()
		c.state.LastRestart = c.now()
		c.mu.Unlock()
		c.metrics.Restart(c.exchange, c.symbol)
	}
}

// stream runs one subscription to its end. It returns nil only when ctx was
// cancelled.
func (c *Connector) stream(ctx context.Context) error {
	sessionID := uuid.NewString()
	c.mu.Lock()
	c.state.SessionID = sessionID
	c.mu.Unlock()
	c.setStatus(StatusStarting)

	logger := c.logger.With("session", sessionID)

	dialCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.cfg.SubscribeTimeout > 0 {
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.SubscribeTimeout)
	}
	sess, err := c.dial(dialCtx)
	cancel()
	if err != nil {
		return c.streamError(OpDial, err)
	}
	defer sess.Close()

	c.setStatus(StatusStreaming)
	logger.Info("feed subscribed")

	for {
		snap, err := c.next(ctx, sess)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return c.streamError(readOp(err), err)
		}

		c.handle(ctx, logger, snap)
	}
}

// handle validates, derives and publishes one snapshot.
func (c *Connector) handle(ctx context.Context, logger *slog.Logger, snap model.OrderBookSnapshot) {
	if !snap.HasBothSides() {
		c.skip(SkipEmptySide)
		logger.Debug("skipping book with empty side",
			"bids", len(snap.Bids),
			"asks", len(snap.Asks),
		)
		return
	}

	// Local receive time is taken once the snapshot is accepted.
	receivedMs := c.now().UnixMilli()

	rec, err := derive.Ticker(snap, receivedMs)
	if err != nil {
		c.skip(SkipEmptySide)
		return
	}

	if err := c.publisher.Publish(ctx, rec); err != nil {
		c.skip(SkipStoreDown)
		c.metrics.StoreError(rec.Exchange, rec.Symbol)
		logger.Warn("publish failed, update dropped", "err", err)
		return
	}

	c.mu.Lock()
	c.state.Published++
	c.state.LastPublish = c.now()
	if c.state.Failures > 0 {
		logger.Info("feed recovered", "after_failures", c.state.Failures)
	}
	c.state.Failures = 0
	c.state.LastError = ""
	c.mu.Unlock()

	c.metrics.Published(rec.Exchange, rec.Symbol, rec.LatencyMs)
}

func (c *Connector) dial(ctx context.Context) (sess exchange.Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return c.venue.Dial(ctx, c.symbol)
}

func (c *Connector) next(ctx context.Context, sess exchange.Session) (snap model.OrderBookSnapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return sess.Next(ctx)
}

func (c *Connector) streamError(op string, err error) *StreamError {
	var pe *panicError
	if errors.As(err, &pe) {
		op = OpPanic
	}
	return &StreamError{
		Exchange: c.exchange,
		Symbol:   c.symbol,
		Op:       op,
		Err:      err,
	}
}

func (c *Connector) recordFailure(err error) (int, string) {
	kind := OpRead
	var se *StreamError
	if errors.As(err, &se) {
		kind = se.Op
	}

	c.mu.Lock()
	if c.state.Failures < MaxTrackedFailures {
		c.state.Failures++
	}
	failures := c.state.Failures
	if err != nil {
		c.state.LastError = err.Error()
	}
	c.mu.Unlock()

	c.metrics.StreamError(c.exchange, c.symbol, kind)
	return failures, kind
}

// cooldown returns Cooldown doubled per extra failure, capped at MaxCooldown.
func (c *Connector) cooldown(failures int) time.Duration {
	d := c.cfg.Cooldown
	max := c.cfg.MaxCooldown
	if max < d {
		max = d
	}
	for i := 1; i < failures && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}
	return d
}

func (c *Connector) skip(reason string) {
	c.mu.Lock()
	c.state.Skipped++
	c.mu.Unlock()
	c.metrics.Skipped(c.exchange, c.symbol, reason)
}

func (c *Connector) setStatus(s Status) {
	c.mu.Lock()
	c.state.Status = s
	c.mu.Unlock()
	c.metrics.SetStatus(c.exchange, c.symbol, int(s))
}
