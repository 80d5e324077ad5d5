package arbitrage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rickgao/arb-ingest/internal/metrics"
	"github.com/rickgao/arb-ingest/internal/model"
)

// OpportunityHandler receives every evaluated opportunity of a scan.
type OpportunityHandler interface {
	HandleOpportunities(opps []Opportunity)
}

// OpportunityHandlerFunc is a function adapter for OpportunityHandler.
type OpportunityHandlerFunc func([]Opportunity)

func (f OpportunityHandlerFunc) HandleOpportunities(opps []Opportunity) {
	f(opps)
}

// Config holds scanner configuration.
type Config struct {
	Exchanges    []string
	Symbols      []string
	PollInterval time.Duration // default: 1s
	FeePct       float64       // Round-trip fees, in percent
	Investment   float64       // Quote currency per trade
	StaleAfter   time.Duration // 0 disables staleness checks
	Timeout      time.Duration // Per-scan store timeout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		FeePct:       0.2,
		Investment:   1000,
		StaleAfter:   5 * time.Second,
		Timeout:      2 * time.Second,
	}
}

// Scanner periodically reads all ticker records and evaluates spreads.
type Scanner struct {
	cfg     Config
	rdb     redis.Cmdable
	handler OpportunityHandler
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	keys []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Scanner. handler and m may be nil.
func New(cfg Config, rdb redis.Cmdable, handler OpportunityHandler, m *metrics.Metrics, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}

	keys := make([]string, 0, len(cfg.Symbols)*len(cfg.Exchanges))
	for _, sym := range cfg.Symbols {
		for _, ex := range cfg.Exchanges {
			keys = append(keys, model.TickerKey(ex, sym))
		}
	}

	return &Scanner{
		cfg:     cfg,
		rdb:     rdb,
		handler: handler,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		keys:    keys,
	}
}

// Start begins the scan loop.
func (s *Scanner) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("spread scanner started",
		"interval", s.cfg.PollInterval,
		"keys", len(s.keys),
		"fee_pct", s.cfg.FeePct,
		"investment", s.cfg.Investment,
	)

	return nil
}

// Stop gracefully shuts down the scanner.
func (s *Scanner) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("spread scanner stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main scan loop.
func (s *Scanner) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	// Scan immediately on start.
	s.scanAndReport()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.scanAndReport()
		}
	}
}

func (s *Scanner) scanAndReport() {
	ctx := s.ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, s.cfg.Timeout)
		defer cancel()
	}

	opps, err := s.Scan(ctx)
	if err != nil {
		if s.ctx.Err() == nil {
			s.logger.Warn("scan failed", "err", err)
		}
		return
	}

	for _, o := range opps {
		s.metrics.Opportunity(o.Symbol, o.BuyExchange, o.SellExchange, o.NetProfit)
		if !o.Profitable() {
			continue
		}
		s.logger.Info("arbitrage opportunity",
			"symbol", o.Symbol,
			"buy", o.BuyExchange,
			"sell", o.SellExchange,
			"buy_price", o.BuyPrice,
			"sell_price", o.SellPrice,
			"profit_pct", o.ProfitPct,
			"net_profit", o.NetProfit,
			"liquidity", o.Liquidity,
			"imbalance", o.Imbalance,
			"latency_ms", o.LatencyMs,
			"stale", o.Stale,
		)
	}

	if s.handler != nil {
		s.handler.HandleOpportunities(opps)
	}
}

// Scan reads every configured key once and evaluates all ordered exchange
// pairs per symbol that have both records present.
func (s *Scanner) Scan(ctx context.Context) ([]Opportunity, error) {
	if len(s.keys) == 0 {
		return nil, nil
	}

	vals, err := s.rdb.MGet(ctx, s.keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget tickers: %w", err)
	}

	records := make(map[string]model.TickerRecord, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue // missing key
		}
		var rec model.TickerRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.logger.Debug("skipping undecodable record", "key", s.keys[i], "err", err)
			continue
		}
		records[s.keys[i]] = rec
	}

	nowMs := s.now().UnixMilli()

	var opps []Opportunity
	for _, sym := range s.cfg.Symbols {
		for _, buyEx := range s.cfg.Exchanges {
			buy, ok := records[model.TickerKey(buyEx, sym)]
			if !ok {
				continue
			}
			for _, sellEx := range s.cfg.Exchanges {
				if sellEx == buyEx {
					continue
				}
				sell, ok := records[model.TickerKey(sellEx, sym)]
				if !ok {
					continue
				}
				opps = append(opps, Evaluate(buy, sell, s.cfg.FeePct, s.cfg.Investment, s.cfg.StaleAfter, nowMs))
			}
		}
	}

	return opps, nil
}
