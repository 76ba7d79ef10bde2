package middleware

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mcp-server/protocol"
)

// Logger is the interface for structured logging.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logging returns middleware that logs one entry per request.
// Successful requests are logged at info level, protocol errors at warn
// level. Notifications are logged at debug level.
func Logging(logger Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			fields := []Field{
				F("method", req.Method),
				F("duration", time.Since(start)),
			}
			if requestID := RequestIDFromContext(ctx); requestID != "" {
				fields = append(fields, F("request_id", requestID))
			}
			if transport := protocol.GetRequestMeta(ctx, protocol.MetaTransport); transport != "" {
				fields = append(fields, F("transport", transport))
			}
			if addr := protocol.GetRequestMeta(ctx, protocol.MetaRemoteAddr); addr != "" {
				fields = append(fields, F("remote_addr", addr))
			}

			switch {
			case err != nil:
				fields = append(fields, F("error", err.Error()))
				logger.Warn("request failed", fields...)
			case req.IsNotification():
				logger.Debug("notification handled", fields...)
			default:
				logger.Info("request completed", fields...)
			}

			return resp, err
		}
	}
}

// NopLogger is a logger that discards all log entries.
type NopLogger struct{}

func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
