package writer

import (
	"fmt"
	"time"
)

// WriterConfig contains configuration for the ticker writer.
type WriterConfig struct {
	// WriteTimeout bounds a single store write.
	WriteTimeout time.Duration
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		WriteTimeout: 2 * time.Second,
	}
}

// WriterMetrics tracks writer activity.
type WriterMetrics struct {
	Writes int64
	Errors int64
}

// StoreWriteError reports a rejected or failed write for one key.
type StoreWriteError struct {
	Key string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write %s: %v", e.Key, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}
