package domain

import (
	"context"
	"time"
)

// RateLimiter enforces a per-key request budget over a sliding window.
type RateLimiter interface {
	// Allow reports whether a request for key is permitted and, if so,
	// counts it against the window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus is a fire-and-forget pub/sub fabric. The serving layer uses it to
// propagate snapshot reload triggers and to feed accepted matches to the
// WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe returns a channel of raw payloads. The subscription closes
	// with the context; the returned channel is closed at that point.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
