package live

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vango-dev/appstore/pkg/metrics"
)

// Config configures a Hub.
type Config struct {
	// WriteTimeout bounds each frame or ping write.
	// Default: 10s.
	WriteTimeout time.Duration

	// ReadTimeout is how long a client may stay silent, pongs included.
	// Default: 60s.
	ReadTimeout time.Duration

	// HeartbeatInterval is the ping period. Must be less than ReadTimeout.
	// Default: 30s.
	HeartbeatInterval time.Duration

	// SendBuffer is the number of messages queued per client before the
	// client is dropped.
	// Default: 16.
	SendBuffer int

	// CheckOrigin validates the Origin header of upgrade requests.
	// Default: same-origin only (the websocket package default).
	CheckOrigin func(r *http.Request) bool

	// Logger is the structured logger.
	// Default: slog.Default().
	Logger *slog.Logger

	// Metrics records connected clients and frames sent. Optional.
	Metrics *metrics.Metrics
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WriteTimeout:      10 * time.Second,
		ReadTimeout:       60 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		SendBuffer:        16,
	}
}

func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.HeartbeatInterval <= 0 {
		out.HeartbeatInterval = d.HeartbeatInterval
	}
	if out.SendBuffer <= 0 {
		out.SendBuffer = d.SendBuffer
	}
	return &out
}
