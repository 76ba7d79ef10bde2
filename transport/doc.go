// Package transport carries JSON-RPC messages between MCP clients and a
// request handler.
//
// # Stdio Transport
//
// Stdio reads one JSON-RPC message per line from stdin and writes one
// response per line to stdout. It is the default transport:
//
//	t := transport.NewStdio()
//	err := t.Serve(ctx, handler)
//
// # WebSocket Transport
//
// WebSocket serves the same protocol with one message per text frame.
// Every request context carries the peer address as protocol request
// metadata, which the per-client rate limiter keys on:
//
//	t := transport.NewWebSocket(":8080",
//	    transport.WithWebSocketReadTimeout(time.Minute),
//	)
//	err := t.Serve(ctx, handler)
//
// Both transports answer unparseable input with a -32700 parse error and
// never answer notifications.
package transport
