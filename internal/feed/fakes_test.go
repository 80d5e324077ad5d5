package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/arb-ingest/internal/exchange"
	"github.com/rickgao/arb-ingest/internal/model"
)

// step is one scripted result of Session.Next.
type step struct {
	snap  model.OrderBookSnapshot
	err   error
	panic any
}

// fakeSession replays its steps, then blocks until ctx is done.
type fakeSession struct {
	mu     sync.Mutex
	steps  []step
	closed atomic.Bool
}

func (s *fakeSession) Next(ctx context.Context) (model.OrderBookSnapshot, error) {
	s.mu.Lock()
	if len(s.steps) == 0 {
		s.mu.Unlock()
		<-ctx.Done()
		return model.OrderBookSnapshot{}, ctx.Err()
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	s.mu.Unlock()

	if st.panic != nil {
		panic(st.panic)
	}
	return st.snap, st.err
}

func (s *fakeSession) Close() error {
	s.closed.Store(true)
	return nil
}

// dialResult is one scripted result of Venue.Dial.
type dialResult struct {
	session *fakeSession
	err     error
	block   bool // wait for ctx instead of returning
}

// fakeVenue hands out scripted sessions; once the script runs out every
// further Dial returns an idle session.
type fakeVenue struct {
	name string

	mu     sync.Mutex
	script []dialResult
	dials  atomic.Int32
}

func (v *fakeVenue) Name() string { return v.name }

func (v *fakeVenue) Dial(ctx context.Context, symbol string) (exchange.Session, error) {
	v.dials.Add(1)

	v.mu.Lock()
	if len(v.script) == 0 {
		v.mu.Unlock()
		return &fakeSession{}, nil
	}
	r := v.script[0]
	v.script = v.script[1:]
	v.mu.Unlock()

	if r.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.session, nil
}

// fakePublisher records published records and can fail on demand.
type fakePublisher struct {
	mu      sync.Mutex
	records []model.TickerRecord
	failN   int // fail this many calls first
}

func (p *fakePublisher) Publish(ctx context.Context, rec model.TickerRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failN > 0 {
		p.failN--
		return errors.New("store unavailable")
	}
	p.records = append(p.records, rec)
	return nil
}

func (p *fakePublisher) published() []model.TickerRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.TickerRecord(nil), p.records...)
}

func book(exchange string, bid, ask float64, tsMs int64) model.OrderBookSnapshot {
	return model.OrderBookSnapshot{
		Exchange:            exchange,
		Symbol:              "BTC/USDT",
		Bids:                []model.PriceLevel{{Price: bid, Size: 1}, {Price: bid - 1, Size: 2}},
		Asks:                []model.PriceLevel{{Price: ask, Size: 1.5}},
		ExchangeTimestampMs: tsMs,
	}
}

func testConfig() Config {
	return Config{
		Cooldown:         20 * time.Millisecond,
		MaxCooldown:      20 * time.Millisecond,
		SubscribeTimeout: time.Second,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// runConnector starts c and returns a stop func that cancels and waits.
func runConnector(t *testing.T, c *Connector) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	stopped := false
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run returned %v, want nil", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("connector did not stop")
		}
	}
	t.Cleanup(stop)
	return stop
}
