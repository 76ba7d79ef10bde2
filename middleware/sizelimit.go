package middleware

import (
	"context"

	"github.com/felixgeelhaar/mcp-server/protocol"
)

// Common size limit presets.
const (
	KB = 1024
	MB = 1024 * KB
)

// SizeLimitOption configures the size limit middleware.
type SizeLimitOption func(*sizeLimitConfig)

type sizeLimitConfig struct {
	logger Logger
}

// WithSizeLimitLogger sets the logger for size limit events.
func WithSizeLimitLogger(l Logger) SizeLimitOption {
	return func(o *sizeLimitConfig) {
		o.logger = l
	}
}

// SizeLimit returns middleware that rejects requests whose params exceed
// maxBytes with an invalid request error.
func SizeLimit(maxBytes int64, opts ...SizeLimitOption) Middleware {
	cfg := &sizeLimitConfig{logger: NopLogger{}}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if size := int64(len(req.Params)); size > maxBytes {
				cfg.logger.Warn("request size limit exceeded",
					F("method", req.Method),
					F("size", size),
					F("max", maxBytes),
				)
				return nil, protocol.Errorf(protocol.CodeInvalidRequest,
					"request size %d exceeds limit of %d bytes", size, maxBytes)
			}
			return next(ctx, req)
		}
	}
}
