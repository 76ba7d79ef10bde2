// Package mcp is the entry point for running an MCP tool server.
//
// It re-exports the server types and wires a server to a transport with an
// optional middleware chain:
//
//	srv := mcp.NewServer(mcp.ServerInfo{
//	    Name:         "mcp-server",
//	    Version:      "1.0.0",
//	    Capabilities: mcp.Capabilities{Tools: true},
//	})
//
//	type EchoInput struct {
//	    Message string `json:"message" jsonschema:"required"`
//	}
//
//	srv.Tool("echo").
//	    Description("Echo back the input text").
//	    Handler(func(input EchoInput) (string, error) {
//	        return input.Message, nil
//	    })
//
//	mcp.ServeStdio(ctx, srv, mcp.WithLogger(logger))
package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-server/middleware"
	"github.com/felixgeelhaar/mcp-server/protocol"
	"github.com/felixgeelhaar/mcp-server/server"
	"github.com/felixgeelhaar/mcp-server/transport"
)

// ProtocolVersion is the MCP protocol revision the server speaks.
const ProtocolVersion = protocol.MCPVersion

// ServerInfo contains server metadata exposed to clients.
type ServerInfo = server.Info

// Capabilities declares what features the server supports.
type Capabilities = server.Capabilities

// Server is the MCP server instance.
type Server = server.Server

// Option configures a Server.
type Option = server.Option

// CallResult is the envelope returned by tools/call.
type CallResult = server.CallResult

// Middleware types.
type (
	Middleware = middleware.Middleware
	Logger     = middleware.Logger
	LogField   = middleware.Field
	Limits     = middleware.Limits
)

// WebSocketOption configures the WebSocket transport.
type WebSocketOption = transport.WebSocketOption

// NewServer creates a new MCP server with the given info and options.
func NewServer(info ServerInfo, opts ...Option) *Server {
	return server.New(info, opts...)
}

// WithServerLogger sets the logger the dispatcher reports recovered tool
// faults to.
func WithServerLogger(l Logger) Option {
	return server.WithLogger(l)
}

// ServeOption configures how the server is run.
type ServeOption func(*serveOptions)

type serveOptions struct {
	middleware []Middleware
	logger     Logger
	limits     Limits
}

// WithMiddleware adds middleware to the request handling chain.
func WithMiddleware(m ...Middleware) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithLogger installs middleware.DefaultStack(l) ahead of any middleware
// added with WithMiddleware and hands l to the transport.
func WithLogger(l Logger) ServeOption {
	return func(o *serveOptions) {
		o.logger = l
	}
}

// WithLimits enables the request size and rate limits set in l. They run
// after the default stack and before middleware added with WithMiddleware.
func WithLimits(l Limits) ServeOption {
	return func(o *serveOptions) {
		o.limits = l
	}
}

func buildOptions(opts []ServeOption) *serveOptions {
	o := &serveOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *serveOptions) chain() []Middleware {
	if o.logger == nil {
		return append(middleware.LimitStack(middleware.NopLogger{}, o.limits), o.middleware...)
	}
	return append(middleware.Stack(o.logger, o.limits), o.middleware...)
}

func (o *serveOptions) transportLogger() Logger {
	if o.logger == nil {
		return middleware.NopLogger{}
	}
	return o.logger
}

// NewHandler returns the request handler for srv with the middleware
// selected by opts.
func NewHandler(srv *Server, opts ...ServeOption) *server.Handler {
	return server.NewHandler(srv, buildOptions(opts).chain()...)
}

// Serve runs srv on t until ctx is canceled or the transport fails.
// It refuses to start when tool registration recorded errors.
func Serve(ctx context.Context, srv *Server, t transport.Transport, opts ...ServeOption) error {
	if err := srv.Err(); err != nil {
		return fmt.Errorf("mcp: invalid tool registry: %w", err)
	}
	return t.Serve(ctx, NewHandler(srv, opts...))
}

// ServeStdio runs the server on stdin/stdout.
// This blocks until the context is canceled, stdin is closed or an error occurs.
func ServeStdio(ctx context.Context, srv *Server, opts ...ServeOption) error {
	o := buildOptions(opts)
	t := transport.NewStdio(transport.WithStdioLogger(o.transportLogger()))
	return Serve(ctx, srv, t, opts...)
}

// ServeWebSocket runs the server using WebSocket transport on addr.
// This blocks until the context is canceled or an error occurs.
func ServeWebSocket(ctx context.Context, srv *Server, addr string, wsOpts []WebSocketOption, opts ...ServeOption) error {
	o := buildOptions(opts)
	wsOpts = append([]WebSocketOption{transport.WithWebSocketLogger(o.transportLogger())}, wsOpts...)
	t := transport.NewWebSocket(addr, wsOpts...)
	return Serve(ctx, srv, t, opts...)
}

// LogF creates a new log field with the given key and value.
func LogF(key string, value any) LogField {
	return middleware.F(key, value)
}
