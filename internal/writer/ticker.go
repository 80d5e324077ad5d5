package writer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/rickgao/arb-ingest/internal/model"
)

// TickerWriter writes TickerRecords to the store, one key per feed.
// It is safe for concurrent use by all connectors.
type TickerWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Store
	rdb redis.Cmdable

	// Metrics
	mu      sync.Mutex
	metrics WriterMetrics
}

// NewTickerWriter creates a new TickerWriter.
func NewTickerWriter(cfg WriterConfig, rdb redis.Cmdable, logger *slog.Logger) *TickerWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TickerWriter{
		cfg:    cfg,
		rdb:    rdb,
		logger: logger,
	}
}

// Publish overwrites the stored value for rec's key.
//
// The write runs on a context detached from ctx's cancellation so that a
// shutdown signal never interrupts a write half way; it is still bounded
// by WriteTimeout.
func (w *TickerWriter) Publish(ctx context.Context, rec model.TickerRecord) error {
	key := rec.Key()

	payload, err := json.Marshal(rec)
	if err != nil {
		w.recordError()
		return &StoreWriteError{Key: key, Err: err}
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.WriteTimeout)
	defer cancel()

	if err := w.rdb.Set(writeCtx, key, payload, 0).Err(); err != nil {
		w.logger.Debug("store write failed", "key", key, "error", err)
		w.recordError()
		return &StoreWriteError{Key: key, Err: err}
	}

	w.mu.Lock()
	w.metrics.Writes++
	w.mu.Unlock()

	return nil
}

// Stats returns current metrics.
func (w *TickerWriter) Stats() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

func (w *TickerWriter) recordError() {
	w.mu.Lock()
	w.metrics.Errors++
	w.mu.Unlock()
}
