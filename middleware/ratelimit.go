package middleware

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/mcp-server/protocol"
)

// keyGlobal is the bucket shared by requests without a more specific key.
const keyGlobal = "global"

// KeyFunc extracts a rate limit bucket key from a request.
type KeyFunc func(ctx context.Context, req *protocol.Request) string

// RateLimitOption configures the rate limiter.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	keyFunc KeyFunc
	logger  Logger
}

// WithRateLimitKeyFunc sets a function to extract a rate limit key from requests.
func WithRateLimitKeyFunc(fn KeyFunc) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.keyFunc = fn
	}
}

// WithRateLimitLogger sets the logger for rate limit events.
func WithRateLimitLogger(l Logger) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.logger = l
	}
}

// RateLimit returns middleware that limits request rate with a fortify
// token bucket. rate is requests per second, burst the bucket size.
// Rejected requests fail with protocol.CodeRateLimited.
func RateLimit(rate int, burst int, opts ...RateLimitOption) Middleware {
	cfg := &rateLimitConfig{
		keyFunc: func(context.Context, *protocol.Request) string { return keyGlobal },
		logger:  NopLogger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    burst,
		Interval: time.Second,
	})

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			key := cfg.keyFunc(ctx, req)

			if !limiter.Allow(ctx, key) {
				cfg.logger.Warn("rate limit exceeded",
					F("method", req.Method),
					F("key", key),
				)
				return nil, protocol.NewRateLimited("rate limit exceeded")
			}

			return next(ctx, req)
		}
	}
}

// RateLimitByClient applies a separate bucket to each remote address
// recorded in the request metadata. Requests without one, such as those
// read from stdio, share the global bucket.
func RateLimitByClient(rate int, burst int, opts ...RateLimitOption) Middleware {
	allOpts := append([]RateLimitOption{
		WithRateLimitKeyFunc(ClientKey),
	}, opts...)
	return RateLimit(rate, burst, allOpts...)
}

// ClientKey returns the remote address of the request, or the global key.
func ClientKey(ctx context.Context, _ *protocol.Request) string {
	if addr := protocol.GetRequestMeta(ctx, protocol.MetaRemoteAddr); addr != "" {
		return addr
	}
	return keyGlobal
}
