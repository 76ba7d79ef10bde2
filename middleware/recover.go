package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/felixgeelhaar/mcp-server/protocol"
)

// PanicHandler is called when a panic is recovered.
type PanicHandler func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error)

// Recover returns middleware that catches panics and converts them to internal errors.
func Recover() Middleware {
	return RecoverWithHandler(defaultPanicHandler)
}

// RecoverWithLogger is Recover that also logs the panic value and stack.
func RecoverWithLogger(logger Logger) Middleware {
	return RecoverWithHandler(func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error) {
		logger.Error("panic recovered",
			F("method", req.Method),
			F("panic", fmt.Sprint(panicVal)),
			F("stack", string(debug.Stack())),
		)
		return defaultPanicHandler(ctx, req, panicVal)
	})
}

// RecoverWithHandler returns middleware that catches panics and calls the provided handler.
func RecoverWithHandler(handler PanicHandler) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (resp *protocol.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp, err = handler(ctx, req, r)
				}
			}()
			return next(ctx, req)
		}
	}
}

func defaultPanicHandler(_ context.Context, _ *protocol.Request, panicVal any) (*protocol.Response, error) {
	return nil, protocol.Errorf(protocol.CodeInternalError, "panic: %v", panicVal)
}
