package middleware

import (
	"context"

	"github.com/felixgeelhaar/mcp-server/protocol"
)

// HandlerFunc is the signature for request handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes multiple middleware into a single middleware.
// Chain(m1, m2, m3) results in m1 wrapping m2 wrapping m3 wrapping the
// final handler.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] == nil {
				continue
			}
			final = middlewares[i](final)
		}
		return final
	}
}
