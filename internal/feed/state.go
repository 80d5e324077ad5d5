package feed

import (
	"time"
)

// MaxTrackedFailures caps the consecutive failure count.
const MaxTrackedFailures = 16

// Status is the lifecycle position of a connector.
type Status int

const (
	StatusStarting Status = iota
	StatusStreaming
	StatusBackoff
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusStreaming:
		return "streaming"
	case StatusBackoff:
		return "backoff"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON and logs.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StateSnapshot is a point-in-time copy of a connector's state.
type StateSnapshot struct {
	Exchange    string    `json:"exchange"`
	Symbol      string    `json:"symbol"`
	Status      Status    `json:"status"`
	Failures    int       `json:"failures"` // Consecutive, capped at MaxTrackedFailures
	LastRestart time.Time `json:"last_restart"`
	LastError   string    `json:"last_error,omitempty"`
	LastPublish time.Time `json:"last_publish"`
	Published   int64     `json:"published"`
	Skipped     int64     `json:"skipped"`
	SessionID   string    `json:"session_id,omitempty"` // Current subscription, for log correlation
}
